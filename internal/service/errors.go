package service

import (
	"errors"

	"github.com/spec-kit/asset-desk/internal/repository"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

// mapRepoError turns repository sentinels into domain errors. Domain errors
// pass through; anything else is an infrastructure failure.
func mapRepoError(err error, resource string, details map[string]any) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrDuplicateKey):
		return apperrors.NewDuplicateKey(resource+" already exists", details)
	case errors.Is(err, repository.ErrStale):
		return apperrors.NewConflict(resource+" was modified concurrently", details)
	}
	return apperrors.NewInternalError(err)
}
