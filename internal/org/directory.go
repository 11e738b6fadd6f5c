package org

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrStaffNotFound   = errors.New("staff not found")
	ErrServiceNotFound = errors.New("service not found")
)

// Directory is the read-only view of organization data the engine consumes.
// Ownership of this data (CRUD, auth, memberships) lives outside the engine.
type Directory interface {
	GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error)

	// ListBookableStaff returns active staff of the organization that can
	// perform every one of the requested services.
	ListBookableStaff(ctx context.Context, orgID uuid.UUID, serviceIDs []uuid.UUID) ([]Staff, error)

	// GetServices returns active services by id, erroring when any id is
	// missing, inactive, or belongs to another organization.
	GetServices(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Service, error)

	GetSettings(ctx context.Context, orgID uuid.UUID) (Settings, error)
}
