package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/mn-payments-api/internal/application/service"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/dto/request"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/dto/response"
	"github.com/sangkips/mn-payments-api/pkg/pagination"
	"github.com/sangkips/mn-payments-api/pkg/utils"
)

// ReceiptHandler handles tax receipt HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Submit handles a receipt submission
// @Summary Submit receipt
// @Description Register a sale with the tax authority and persist the receipt
// @Tags receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.SubmitReceiptRequest true "Receipt lines"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /receipts [post]
func (h *ReceiptHandler) Submit(c *gin.Context) {
	if GetTerminalID(c) == nil {
		response.Unauthorized(c, "Terminal not authenticated")
		return
	}

	var req request.SubmitReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	lines := make([]service.ReceiptLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		taxType, err := enum.ParseTaxType(l.TaxType)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		barcodeType, err := enum.ParseBarcodeType(l.BarCodeType)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		lines = append(lines, service.ReceiptLineInput{
			Name:               l.Name,
			TaxType:            taxType,
			ClassificationCode: l.ClassificationCode,
			TaxProductCode:     l.TaxProductCode,
			MeasureUnit:        l.MeasureUnit,
			Qty:                l.Qty,
			TotalAmount:        l.TotalAmount,
			IsCityTax:          l.IsCityTax,
			BarCode:            l.BarCode,
			BarCodeType:        barcodeType,
		})
	}

	receipt, err := h.receiptService.SubmitReceipt(c.Request.Context(), &service.SubmitReceiptInput{
		Lines:         lines,
		BranchNo:      req.BranchNo,
		DistrictCode:  req.DistrictCode,
		CustomerRegNo: req.CustomerRegNo,
		ReportMonth:   req.ReportMonth,
		MailTo:        req.MailTo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt registered successfully", receipt)
}

// Get handles fetching a single receipt
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid receipt ID")
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// List handles listing receipts with filters and offset pagination
func (h *ReceiptHandler) List(c *gin.Context) {
	var req request.ReceiptFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ReceiptFilterParams{
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage},
		Search:     req.Search,
		PosNo:      req.PosNo,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	params.Pagination.Validate()

	if req.Status != "" {
		status, err := enum.ParseReceiptStatus(req.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Status = &status
	}
	if req.ReceiptType != "" {
		receiptType, err := enum.ParseReceiptType(req.ReceiptType)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.ReceiptType = &receiptType
	}
	var parseErr error
	if params.StartDate, parseErr = parseDateQuery(req.StartDate); parseErr != nil {
		response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	if params.EndDate, parseErr = parseDateQuery(req.EndDate); parseErr != nil {
		response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	receipts, total, err := h.receiptService.ListReceipts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(receipts,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Receipts retrieved successfully", result)
}

// LookupTaxpayer handles a taxpayer directory lookup by registration number
func (h *ReceiptHandler) LookupTaxpayer(c *gin.Context) {
	regNo := c.Param("reg_no")
	tin := c.Query("tin")

	info, err := h.receiptService.LookupTaxpayer(c.Request.Context(), tin, regNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Taxpayer retrieved successfully", info)
}

// Districts handles listing cached district codes
func (h *ReceiptHandler) Districts(c *gin.Context) {
	codes, err := h.receiptService.GetDistrictCodes(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "District codes retrieved successfully", codes)
}

// RefreshDistricts forces a re-fetch of the district code reference data
func (h *ReceiptHandler) RefreshDistricts(c *gin.Context) {
	codes, err := h.receiptService.GetDistrictCodes(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "District codes refreshed successfully", codes)
}

// PosInfo proxies the tax authority operator info endpoint
func (h *ReceiptHandler) PosInfo(c *gin.Context) {
	info, err := h.receiptService.GetPosInfo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Operator info retrieved successfully", info)
}

// SendData asks the tax authority connector to push pending receipts
func (h *ReceiptHandler) SendData(c *gin.Context) {
	result, err := h.receiptService.SendData(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Send data triggered successfully", result)
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
