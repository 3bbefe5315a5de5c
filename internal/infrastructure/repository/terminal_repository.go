package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	domainRepo "github.com/sangkips/mn-payments-api/internal/domain/repository"
	"gorm.io/gorm"
)

type terminalRepository struct {
	db *gorm.DB
}

// NewTerminalRepository creates a new POS terminal repository
func NewTerminalRepository(db *gorm.DB) domainRepo.TerminalRepository {
	return &terminalRepository{db: db}
}

func (r *terminalRepository) Create(ctx context.Context, terminal *entity.PosTerminal) error {
	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *terminalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PosTerminal, error) {
	var terminal entity.PosTerminal
	err := r.db.WithContext(ctx).First(&terminal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &terminal, err
}

func (r *terminalRepository) GetByCode(ctx context.Context, code string) (*entity.PosTerminal, error) {
	var terminal entity.PosTerminal
	err := r.db.WithContext(ctx).First(&terminal, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &terminal, err
}

func (r *terminalRepository) Update(ctx context.Context, terminal *entity.PosTerminal) error {
	return r.db.WithContext(ctx).Save(terminal).Error
}

func (r *terminalRepository) List(ctx context.Context) ([]entity.PosTerminal, error) {
	var terminals []entity.PosTerminal
	err := r.db.WithContext(ctx).Order("code ASC").Find(&terminals).Error
	return terminals, err
}
