package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/ebarimt"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/sangkips/mn-payments-api/pkg/tax"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EbarimtGateway is the slice of the ebarimt client the receipt service needs.
type EbarimtGateway interface {
	SubmitReceipt(ctx context.Context, request *ebarimt.ReceiptRequest) (*ebarimt.ReceiptResponse, error)
	GetInfo(ctx context.Context) (json.RawMessage, error)
	TriggerSendData(ctx context.Context) (json.RawMessage, error)
	LookupTaxpayer(ctx context.Context, tin string) (*entity.TaxpayerInfo, error)
	LookupTIN(ctx context.Context, regNo string) (string, error)
	FetchDistrictCodes(ctx context.Context) ([]entity.DistrictCode, error)
}

// ReceiptNotifier delivers a copy of a finalized receipt out of band.
type ReceiptNotifier interface {
	NotifyReceipt(receipt *entity.Receipt, mailTo string) error
}

// MerchantInfo is the static registration data stamped on every receipt.
type MerchantInfo struct {
	TIN          string
	PosNo        string
	BranchNo     string
	DistrictCode string
}

// ReceiptService builds, submits and records tax receipts.
type ReceiptService struct {
	receiptRepo repository.ReceiptRepository
	gateway     EbarimtGateway
	notifier    ReceiptNotifier
	merchant    MerchantInfo
	log         *logrus.Entry
	now         func() time.Time

	districtTTL time.Duration
	districtMu  sync.Mutex
	districts   []entity.DistrictCode
	districtsAt time.Time
}

// NewReceiptService creates a new receipt service.
func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	gateway EbarimtGateway,
	notifier ReceiptNotifier,
	merchant MerchantInfo,
	districtTTL time.Duration,
	log *logrus.Logger,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		gateway:     gateway,
		notifier:    notifier,
		merchant:    merchant,
		districtTTL: districtTTL,
		log:         log.WithField("component", "receipt_service"),
		now:         time.Now,
	}
}

// ReceiptLineInput is one sale line before tax allocation.
type ReceiptLineInput struct {
	Name               string
	TaxType            enum.TaxType
	ClassificationCode string
	TaxProductCode     string
	MeasureUnit        string
	Qty                decimal.Decimal
	TotalAmount        decimal.Decimal
	IsCityTax          bool
	BarCode            string
	BarCodeType        enum.BarcodeType
}

// SubmitReceiptInput is a full receipt submission.
type SubmitReceiptInput struct {
	Lines         []ReceiptLineInput
	BranchNo      string
	DistrictCode  string
	CustomerRegNo string
	ReportMonth   string
	MailTo        string
}

// aggregatedLine is a line with its allocated tax shares.
type aggregatedLine struct {
	ReceiptLineInput
	UnitPrice decimal.Decimal
	VAT       decimal.Decimal
	CityTax   decimal.Decimal
}

// taxGroup is one tax-type bucket of a submission. Buckets keep the order in
// which their tax type first appeared; lines keep insertion order.
type taxGroup struct {
	TaxType      enum.TaxType
	Lines        []aggregatedLine
	TotalAmount  decimal.Decimal
	TotalVAT     decimal.Decimal
	TotalCityTax decimal.Decimal
}

// allocateTaxes computes the VAT and city-tax share of one line. Only a
// VAT-paying merchant accrues VAT, and only on VAT_ABLE lines; a city-tax
// line outside VAT_ABLE still owes the city its share.
func allocateTaxes(line *ReceiptLineInput, vatPayer bool) (vat, cityTax decimal.Decimal) {
	switch {
	case line.TaxType == enum.TaxTypeVATAble && line.IsCityTax:
		if vatPayer {
			vat = tax.VATWithCityTax(line.TotalAmount)
		}
		cityTax = tax.CityTax(line.TotalAmount)
	case line.TaxType == enum.TaxTypeVATAble:
		if vatPayer {
			vat = tax.VAT(line.TotalAmount)
		}
	case line.IsCityTax:
		cityTax = tax.CityTaxWithoutVAT(line.TotalAmount)
	}
	return vat, cityTax
}

// aggregateLines groups lines by tax type in first-appearance order and
// allocates per-line taxes.
func aggregateLines(lines []ReceiptLineInput, vatPayer bool) []*taxGroup {
	var order []enum.TaxType
	groups := make(map[enum.TaxType]*taxGroup)

	for _, line := range lines {
		group, ok := groups[line.TaxType]
		if !ok {
			group = &taxGroup{TaxType: line.TaxType}
			groups[line.TaxType] = group
			order = append(order, line.TaxType)
		}

		vat, cityTax := allocateTaxes(&line, vatPayer)

		unitPrice := decimal.Zero
		if !line.Qty.IsZero() {
			unitPrice = tax.Round(line.TotalAmount.Div(line.Qty))
		}

		group.Lines = append(group.Lines, aggregatedLine{
			ReceiptLineInput: line,
			UnitPrice:        unitPrice,
			VAT:              vat,
			CityTax:          cityTax,
		})
		group.TotalAmount = group.TotalAmount.Add(line.TotalAmount)
		group.TotalVAT = group.TotalVAT.Add(vat)
		group.TotalCityTax = group.TotalCityTax.Add(cityTax)
	}

	ordered := make([]*taxGroup, 0, len(order))
	for _, taxType := range order {
		ordered = append(ordered, groups[taxType])
	}
	return ordered
}

func validateLines(lines []ReceiptLineInput) error {
	if len(lines) == 0 {
		return apperror.NewValidationError("Receipt must contain at least one line")
	}
	for _, line := range lines {
		if strings.TrimSpace(line.Name) == "" {
			return apperror.NewValidationError("Receipt line name is required")
		}
		if line.ClassificationCode == "" {
			return apperror.NewValidationError("Receipt line classification code is required")
		}
		if line.Qty.Sign() <= 0 {
			return apperror.NewValidationError("Receipt line quantity must be positive")
		}
		if line.TotalAmount.Sign() < 0 {
			return apperror.NewValidationError("Receipt line amount cannot be negative")
		}
		if !line.TaxType.IsValid() {
			return apperror.NewValidationError("Receipt line has an unknown tax type")
		}
	}
	return nil
}

// SubmitReceipt runs the full receipt flow: validate, allocate taxes, submit
// to PosAPI and persist the confirmed receipt. Nothing is persisted when the
// terminal rejects or is unreachable.
func (s *ReceiptService) SubmitReceipt(ctx context.Context, input *SubmitReceiptInput) (*entity.Receipt, error) {
	if err := validateLines(input.Lines); err != nil {
		return nil, err
	}

	branchNo := input.BranchNo
	if branchNo == "" {
		branchNo = s.merchant.BranchNo
	}
	districtCode := input.DistrictCode
	if districtCode == "" {
		districtCode = s.merchant.DistrictCode
	}

	merchantInfo, err := s.gateway.LookupTaxpayer(ctx, s.merchant.TIN)
	if err != nil {
		return nil, err
	}

	receiptType := enum.ReceiptTypeB2CReceipt
	customerTIN := ""
	if input.CustomerRegNo != "" {
		receiptType = enum.ReceiptTypeB2BReceipt
		tin, err := s.gateway.LookupTIN(ctx, input.CustomerRegNo)
		if err != nil {
			return nil, apperror.NewValidationError("Customer registration number could not be resolved to a TIN")
		}
		customerTIN = tin
	}

	groups := aggregateLines(input.Lines, merchantInfo.VATPayer)

	request := s.buildRequest(groups, receiptType, customerTIN, branchNo, districtCode, input.ReportMonth)

	response, err := s.gateway.SubmitReceipt(ctx, request)
	if err != nil {
		return nil, err
	}

	receipt := s.buildReceiptRecord(groups, request, response, receiptType, customerTIN)
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		s.log.WithError(err).WithField("bill_id", receipt.BillID).
			Error("receipt confirmed by PosAPI but could not be recorded")
		return nil, err
	}

	if s.notifier != nil && input.MailTo != "" {
		go func(r entity.Receipt, mailTo string) {
			if err := s.notifier.NotifyReceipt(&r, mailTo); err != nil {
				s.log.WithError(err).Warn("receipt notification failed")
			}
		}(*receipt, input.MailTo)
	}

	return receipt, nil
}

func (s *ReceiptService) buildRequest(
	groups []*taxGroup,
	receiptType enum.ReceiptType,
	customerTIN, branchNo, districtCode, reportMonth string,
) *ebarimt.ReceiptRequest {
	totalAmount := decimal.Zero
	totalVAT := decimal.Zero
	totalCityTax := decimal.Zero

	payloadGroups := make([]ebarimt.ReceiptGroupPayload, 0, len(groups))
	for _, group := range groups {
		items := make([]ebarimt.ReceiptItemPayload, 0, len(group.Lines))
		for _, line := range group.Lines {
			items = append(items, ebarimt.ReceiptItemPayload{
				Name:               line.Name,
				BarCode:            line.BarCode,
				BarCodeType:        line.BarCodeType.String(),
				ClassificationCode: line.ClassificationCode,
				TaxProductCode:     line.TaxProductCode,
				MeasureUnit:        line.MeasureUnit,
				Qty:                line.Qty,
				UnitPrice:          ebarimt.Money(line.UnitPrice),
				TotalAmount:        ebarimt.Money(line.TotalAmount),
				TotalVAT:           ebarimt.Money(line.VAT),
				TotalCityTax:       ebarimt.Money(line.CityTax),
			})
		}
		payloadGroups = append(payloadGroups, ebarimt.ReceiptGroupPayload{
			TaxType:      group.TaxType.String(),
			Items:        items,
			TotalAmount:  ebarimt.Money(group.TotalAmount),
			TotalVAT:     ebarimt.Money(group.TotalVAT),
			TotalCityTax: ebarimt.Money(group.TotalCityTax),
		})
		totalAmount = totalAmount.Add(group.TotalAmount)
		totalVAT = totalVAT.Add(group.TotalVAT)
		totalCityTax = totalCityTax.Add(group.TotalCityTax)
	}

	return &ebarimt.ReceiptRequest{
		MerchantTIN:  s.merchant.TIN,
		PosNo:        s.merchant.PosNo,
		BranchNo:     branchNo,
		DistrictCode: districtCode,
		Type:         receiptType.String(),
		CustomerTIN:  customerTIN,
		ReportMonth:  reportMonth,
		TotalAmount:  ebarimt.Money(totalAmount),
		TotalVAT:     ebarimt.Money(totalVAT),
		TotalCityTax: ebarimt.Money(totalCityTax),
		Receipts:     payloadGroups,
	}
}

func (s *ReceiptService) buildReceiptRecord(
	groups []*taxGroup,
	request *ebarimt.ReceiptRequest,
	response *ebarimt.ReceiptResponse,
	receiptType enum.ReceiptType,
	customerTIN string,
) *entity.Receipt {
	receiptDate, err := time.Parse("2006-01-02 15:04:05", response.Date)
	if err != nil {
		receiptDate = s.now()
	}

	var items []entity.ReceiptItem
	position := 0
	for _, group := range groups {
		for _, line := range group.Lines {
			items = append(items, entity.ReceiptItem{
				Position:           position,
				Name:               line.Name,
				TaxType:            line.TaxType,
				ClassificationCode: line.ClassificationCode,
				TaxProductCode:     line.TaxProductCode,
				MeasureUnit:        line.MeasureUnit,
				Qty:                line.Qty,
				UnitPrice:          line.UnitPrice,
				TotalAmount:        line.TotalAmount,
				TotalVAT:           line.VAT,
				TotalCityTax:       line.CityTax,
				IsCityTax:          line.IsCityTax,
				BarCode:            line.BarCode,
				BarCodeType:        line.BarCodeType,
			})
			position++
		}
	}

	return &entity.Receipt{
		BillID:        response.ID,
		LotteryNumber: response.Lottery,
		ReceiptDate:   receiptDate,
		ReceiptType:   receiptType,
		Status:        enum.ReceiptStatusSuccess,
		MerchantTIN:   request.MerchantTIN,
		PosNo:         request.PosNo,
		BranchNo:      request.BranchNo,
		DistrictCode:  request.DistrictCode,
		CustomerTIN:   customerTIN,
		ReportMonth:   request.ReportMonth,
		TotalAmount:   request.TotalAmount.Decimal(),
		TotalVAT:      request.TotalVAT.Decimal(),
		TotalCityTax:  request.TotalCityTax.Decimal(),
		Message:       response.Message,
		QRData:        response.QRData,
		Items:         items,
	}
}

// GetReceipt returns a stored receipt by ID.
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// ListReceipts returns stored receipts matching the filters.
func (s *ReceiptService) ListReceipts(ctx context.Context, params *repository.ReceiptFilterParams) ([]entity.Receipt, int64, error) {
	return s.receiptRepo.List(ctx, params)
}

// LookupTaxpayer looks up taxpayer status by TIN or, when regNo is given,
// resolves the registration number first.
func (s *ReceiptService) LookupTaxpayer(ctx context.Context, tin, regNo string) (*entity.TaxpayerInfo, error) {
	if tin == "" && regNo == "" {
		return nil, apperror.NewValidationError("A TIN or registration number is required")
	}
	if tin == "" {
		resolved, err := s.gateway.LookupTIN(ctx, regNo)
		if err != nil {
			return nil, err
		}
		tin = resolved
	}

	info, err := s.gateway.LookupTaxpayer(ctx, tin)
	if err != nil {
		return nil, err
	}
	if !info.Found {
		return nil, apperror.NewNotFoundError("Taxpayer")
	}
	return info, nil
}

// GetDistrictCodes returns the authority's branch/district reference list,
// served from a process-wide cache until the TTL lapses or a forced refresh.
func (s *ReceiptService) GetDistrictCodes(ctx context.Context, forceRefresh bool) ([]entity.DistrictCode, error) {
	s.districtMu.Lock()
	defer s.districtMu.Unlock()

	if !forceRefresh && s.districts != nil && s.now().Sub(s.districtsAt) < s.districtTTL {
		return s.districts, nil
	}

	codes, err := s.gateway.FetchDistrictCodes(ctx)
	if err != nil {
		// Serve stale data over an error when we have any.
		if s.districts != nil {
			s.log.WithError(err).Warn("district code refresh failed, serving cached list")
			return s.districts, nil
		}
		return nil, err
	}

	s.districts = codes
	s.districtsAt = s.now()
	return codes, nil
}

// GetPosInfo proxies the terminal's rest/info payload.
func (s *ReceiptService) GetPosInfo(ctx context.Context) (json.RawMessage, error) {
	return s.gateway.GetInfo(ctx)
}

// SendData asks the terminal to flush pending receipts to the tax service.
func (s *ReceiptService) SendData(ctx context.Context) (json.RawMessage, error) {
	return s.gateway.TriggerSendData(ctx)
}
