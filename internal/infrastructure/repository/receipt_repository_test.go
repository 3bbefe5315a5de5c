package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptRepositoryPreservesItemOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	receipt := &entity.Receipt{
		BillID:       "0000123456",
		ReceiptDate:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ReceiptType:  enum.ReceiptTypeB2CReceipt,
		Status:       enum.ReceiptStatusSuccess,
		MerchantTIN:  "12345678",
		PosNo:        "10012345",
		BranchNo:     "001",
		DistrictCode: "2301",
		TotalAmount:  decimal.NewFromInt(15000),
		TotalVAT:     decimal.RequireFromString("1363.64"),
		Items: []entity.ReceiptItem{
			{Position: 0, Name: "coffee", TaxType: enum.TaxTypeVATAble, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10000), TotalAmount: decimal.NewFromInt(10000)},
			{Position: 1, Name: "tea", TaxType: enum.TaxTypeVATAble, Qty: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5000), TotalAmount: decimal.NewFromInt(5000)},
		},
	}
	require.NoError(t, repo.Create(ctx, receipt))

	got, err := repo.GetByBillID(ctx, "0000123456")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "coffee", got.Items[0].Name)
	assert.Equal(t, "tea", got.Items[1].Name)
}

func TestReceiptRepositoryUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReceiptRepository(db)
	ctx := context.Background()

	receipt := &entity.Receipt{
		BillID:      "0000654321",
		ReceiptDate: time.Now().UTC(),
		ReceiptType: enum.ReceiptTypeB2BReceipt,
		Status:      enum.ReceiptStatusPayment,
		MerchantTIN: "12345678",
		PosNo:       "10012345",
		TotalAmount: decimal.NewFromInt(1000),
	}
	require.NoError(t, repo.Create(ctx, receipt))

	require.NoError(t, repo.UpdateStatus(ctx, receipt.ID, enum.ReceiptStatusError, "DDTD timeout"))

	got, err := repo.GetByID(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusError, got.Status)
	assert.Equal(t, "DDTD timeout", got.Message)
}

func TestReceiptRepositoryGetByBillIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReceiptRepository(db)

	got, err := repo.GetByBillID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}
