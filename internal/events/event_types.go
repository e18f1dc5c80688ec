package events

import (
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketDeleted   EventType = "ticket_deleted"
	EventAssetCreated    EventType = "asset_created"
	EventAssetUpdated    EventType = "asset_updated"
	EventAssetAssigned   EventType = "asset_assigned"
	EventAssetDeleted    EventType = "asset_deleted"
	EventLicenseCreated  EventType = "license_created"
	EventLicenseUpdated  EventType = "license_updated"
	EventLicenseAssigned EventType = "license_assigned"
	EventLicenseDeleted  EventType = "license_deleted"
)

// AllEventTypes lists every type a sink may subscribe to.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
	EventAssetCreated,
	EventAssetUpdated,
	EventAssetAssigned,
	EventAssetDeleted,
	EventLicenseCreated,
	EventLicenseUpdated,
	EventLicenseAssigned,
	EventLicenseDeleted,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string           `json:"id"`
	Name string           `json:"name,omitempty"`
	Role domain.ActorRole `json:"role,omitempty"`
}

// ActorFrom converts the authenticated identity into event metadata.
func ActorFrom(a domain.Actor) Actor {
	return Actor{ID: a.ID, Name: a.Name, Role: a.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    domain.TicketTitle `json:"title"`
	Risk     domain.TicketRisk  `json:"risk"`
	UserID   string             `json:"user_id"`
	UserName string             `json:"user_name"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldState domain.TicketState `json:"old_state"`
	NewState domain.TicketState `json:"new_state"`
	Risk     domain.TicketRisk  `json:"risk"`
	Comment  string             `json:"comment,omitempty"`
}

// AssignedPayload is shared by asset and license assignment events.
type AssignedPayload struct {
	AsignadoPara string                `json:"asignado_para"`
	Desde        string                `json:"desde,omitempty"`
	Accion       domain.MovementAction `json:"accion"`
	Movimientos  int                   `json:"movimientos"`
}

// RecordPayload describes a created or updated inventory record.
type RecordPayload struct {
	Categoria string `json:"categoria,omitempty"`
	Modelo    string `json:"modelo,omitempty"`
	Cuenta    string `json:"cuenta,omitempty"`
	Changed   bool   `json:"changed"`
}
