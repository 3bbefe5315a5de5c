package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
)

// TerminalRepository defines the interface for POS terminal data operations
type TerminalRepository interface {
	Create(ctx context.Context, terminal *entity.PosTerminal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error)
	GetByCode(ctx context.Context, code string) (*entity.PosTerminal, error)
	Update(ctx context.Context, terminal *entity.PosTerminal) error
	List(ctx context.Context) ([]entity.PosTerminal, error)
}
