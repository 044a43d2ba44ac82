package recurrence

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Pattern) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pattern, error)
}
