package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/pkg/pagination"
)

// ReceiptRepository defines the interface for tax receipt data operations
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	GetByBillID(ctx context.Context, billID string) (*entity.Receipt, error)
	List(ctx context.Context, params *ReceiptFilterParams) ([]entity.Receipt, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.ReceiptStatus, message string) error
}

// ReceiptFilterParams contains filtering parameters for receipt queries
type ReceiptFilterParams struct {
	Pagination  *pagination.PaginationParams
	Search      string
	Status      *enum.ReceiptStatus
	ReceiptType *enum.ReceiptType
	PosNo       string
	StartDate   *time.Time
	EndDate     *time.Time
	SortBy      string
	SortOrder   string
}
