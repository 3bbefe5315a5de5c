package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/mn-payments-api/internal/application/service"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/dto/request"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/dto/response"
	"github.com/sangkips/mn-payments-api/pkg/pagination"
	"github.com/sangkips/mn-payments-api/pkg/utils"
)

// InvoiceHandler handles payment invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles invoice creation
// @Summary Create invoice
// @Description Register an invoice with the payment gateway
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	if GetTerminalID(c) == nil {
		response.Unauthorized(c, "Terminal not authenticated")
		return
	}

	var req request.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	// Default the sender name to the requesting terminal
	if req.SenderName == "" {
		req.SenderName = GetTerminalCode(c)
	}

	currency := enum.CurrencyMNT
	if req.Currency != "" {
		parsed, err := enum.ParseCurrency(req.Currency)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		currency = parsed
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		SenderInvoiceNo: req.SenderInvoiceNo,
		SenderName:      req.SenderName,
		SenderTIN:       req.SenderTIN,
		ReceiverCode:    req.ReceiverCode,
		Description:     req.Description,
		Amount:          req.Amount,
		Currency:        currency,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles fetching a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// List handles listing invoices with filters and offset pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	var req request.InvoiceFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InvoiceFilterParams{
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage},
		Search:     req.Search,
		SenderTIN:  req.SenderTIN,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	params.Pagination.Validate()

	if req.Status != "" {
		status, err := enum.ParseInvoiceStatus(req.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Status = &status
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

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(invoices,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Check polls the payment gateway and reconciles the invoice state
func (h *InvoiceHandler) Check(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.CheckPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment check completed", invoice)
}

// Cancel voids an unpaid invoice with the gateway and locally
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice canceled successfully", invoice)
}
