package domain

import "time"

// Specification describes the technical sheet of a hardware model. Asset
// creation uses it to fill in brand and category.
type Specification struct {
	ID             string
	Modelo         string
	Categoria      string
	Marca          string
	Procesador     string
	FrecuenciaGhz  string
	Almacenamiento string
	RAM            string
	SO             string
	Graficos       string
	Resolucion     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
