package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/pkg/pagination"
)

// InvoiceRepository defines the interface for payment invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.Invoice, error)
	GetBySenderInvoiceNo(ctx context.Context, senderInvoiceNo string) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// TransitionStatus moves an invoice from one status to another with an
	// optimistic concurrency check. It returns the number of rows updated:
	// zero means another writer changed the record first.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to enum.InvoiceStatus, version int64, paidAt *time.Time, paymentResult string) (int64, error)
	RecordPaymentCheck(ctx context.Context, id uuid.UUID, checkedAt time.Time, paymentResult string) error
	// RecordCallback stores the raw gateway callback body with the invoice
	// for audit.
	RecordCallback(ctx context.Context, id uuid.UUID, receivedAt time.Time, payload string) error
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.InvoiceStatus
	SenderTIN  string
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}
