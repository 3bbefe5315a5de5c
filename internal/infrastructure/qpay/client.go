package qpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// Client is a QPay v2 merchant API client. Authentication is handled
// internally; all exported calls attach a valid bearer token.
type Client struct {
	baseURL     string
	invoiceCode string
	callbackURL string
	httpClient  *http.Client
	tokens      *tokenSource
	log         *logrus.Entry
}

// NewClient creates a new QPay client from configuration.
func NewClient(cfg *config.QPayConfig, log *logrus.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		baseURL:     baseURL,
		invoiceCode: cfg.InvoiceCode,
		callbackURL: cfg.CallbackURL,
		httpClient:  httpClient,
		tokens:      newTokenSource(baseURL, cfg.Username, cfg.Password, httpClient),
		log:         log.WithField("component", "qpay"),
	}
}

// CreateInvoice registers a new invoice with the gateway and returns its
// remote ID, QR payload and bank deep links.
func (c *Client) CreateInvoice(ctx context.Context, params *CreateInvoiceParams) (*Invoice, error) {
	// The callback carries the sender invoice number so the reconciler can
	// find the local record without a gateway round trip.
	callback := c.callbackURL
	if callback != "" {
		callback += "?invoice_id=" + url.QueryEscape(params.SenderInvoiceNo)
	}

	payload := createInvoiceRequest{
		InvoiceCode:         c.invoiceCode,
		SenderInvoiceNo:     params.SenderInvoiceNo,
		SenderBranchCode:    params.SenderBranchCode,
		InvoiceReceiverCode: params.ReceiverCode,
		InvoiceDescription:  params.Description,
		Amount:              money(params.Amount),
		CallbackURL:         callback,
	}

	c.log.WithFields(logrus.Fields{
		"sender_invoice_no": params.SenderInvoiceNo,
		"amount":            params.Amount,
	}).Info("creating invoice")

	var invoice Invoice
	if err := c.do(ctx, http.MethodPost, "/invoice", payload, &invoice); err != nil {
		return nil, err
	}
	invoice.InvoiceCode = c.invoiceCode
	invoice.CallbackURL = callback
	return &invoice, nil
}

// GetInvoice fetches the gateway's current view of an invoice.
func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceDetails, error) {
	var details InvoiceDetails
	if err := c.do(ctx, http.MethodGet, "/invoice/"+invoiceID, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// CheckPayment asks the gateway which payments have settled against an
// invoice.
func (c *Client) CheckPayment(ctx context.Context, invoiceID string) (*PaymentCheck, error) {
	payload := checkPaymentRequest{
		ObjectType: "INVOICE",
		ObjectID:   invoiceID,
		Offset:     checkPaymentOffset{PageNumber: 1, PageLimit: 100},
	}

	var check PaymentCheck
	if err := c.do(ctx, http.MethodPost, "/payment/check", payload, &check); err != nil {
		return nil, err
	}
	return &check, nil
}

// CancelInvoice voids an invoice on the gateway.
func (c *Client) CancelInvoice(ctx context.Context, invoiceID string) error {
	return c.do(ctx, http.MethodDelete, "/invoice/"+invoiceID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token.Type()+" "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Error("gateway request failed")
		return apperror.NewTransportError("payment gateway is unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewTransportError("reading gateway response failed")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
		return apperror.NewAuthError("payment gateway rejected credentials")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
			"body":   truncate(string(respBody), 512),
		}).Warn("gateway returned an error")
		return apperror.NewRemoteError(fmt.Sprintf("payment gateway returned status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperror.NewRemoteError("payment gateway returned an unreadable response")
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
