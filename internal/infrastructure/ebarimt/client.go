package ebarimt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// tokenLeeway is subtracted from the TPI token lifetime so a token is never
// used right at its expiry boundary.
const tokenLeeway = 30 * time.Second

// Client talks to the local PosAPI terminal and the national TPI information
// services. It is safe for concurrent use.
type Client struct {
	posAPIURL  string
	tpiURL     string
	authURL    string
	clientID   string
	username   string
	password   string
	httpClient *http.Client
	log        *logrus.Entry
	now        func() time.Time

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
}

// NewClient creates a new ebarimt client from configuration.
func NewClient(cfg *config.EbarimtConfig, log *logrus.Logger) *Client {
	return &Client{
		posAPIURL:  strings.TrimRight(cfg.PosAPIURL, "/"),
		tpiURL:     strings.TrimRight(cfg.TPIURL, "/"),
		authURL:    cfg.TPIAuthURL,
		clientID:   cfg.TPIClientID,
		username:   cfg.TPIUsername,
		password:   cfg.TPIPassword,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithField("component", "ebarimt"),
		now:        time.Now,
	}
}

// SubmitReceipt posts a receipt batch to PosAPI. A transport failure after
// the request left the process means the receipt may or may not exist on the
// terminal; callers must not retry blindly with a new payload.
func (c *Client) SubmitReceipt(ctx context.Context, request *ReceiptRequest) (*ReceiptResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt request: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"pos_no":       request.PosNo,
		"type":         request.Type,
		"total_amount": request.TotalAmount,
	}).Info("submitting receipt to PosAPI")

	respBody, err := c.doPosAPI(ctx, http.MethodPost, "/rest/receipt", body)
	if err != nil {
		return nil, err
	}

	var response ReceiptResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, apperror.NewRemoteError("PosAPI returned an unreadable receipt response")
	}

	if response.Status != PosStatusSuccess {
		c.log.WithFields(logrus.Fields{
			"status":  response.Status,
			"message": response.Message,
		}).Warn("PosAPI rejected receipt")
		return &response, apperror.NewRemoteError("PosAPI rejected receipt: " + response.Message)
	}

	return &response, nil
}

// GetInfo returns the raw payload of the PosAPI rest/info endpoint: terminal
// registration data, supported tax types and pending record counts.
func (c *Client) GetInfo(ctx context.Context) (json.RawMessage, error) {
	return c.doPosAPI(ctx, http.MethodGet, "/rest/info", nil)
}

// TriggerSendData asks the terminal to flush its pending receipts up to the
// tax service.
func (c *Client) TriggerSendData(ctx context.Context) (json.RawMessage, error) {
	return c.doPosAPI(ctx, http.MethodGet, "/rest/sendData", nil)
}

// LookupTaxpayer fetches taxpayer status for a TIN from the TPI directory.
func (c *Client) LookupTaxpayer(ctx context.Context, tin string) (*entity.TaxpayerInfo, error) {
	query := url.Values{"tin": {tin}}
	body, err := c.doTPI(ctx, "/api/info/check/getInfo", query)
	if err != nil {
		return nil, err
	}

	var response taxpayerInfoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, apperror.NewRemoteError("taxpayer lookup returned an unreadable response")
	}
	if response.Status != http.StatusOK {
		return nil, apperror.NewRemoteError("taxpayer lookup failed: " + response.Msg)
	}

	return &entity.TaxpayerInfo{
		TIN:                    tin,
		Name:                   response.Data.Name,
		Found:                  response.Data.Found,
		VATPayer:               response.Data.VATPayer,
		CityPayer:              response.Data.CityPayer,
		FreeProject:            response.Data.FreeProject,
		VATPayerRegisteredDate: response.Data.VATPayerRegisteredDay,
	}, nil
}

// LookupTIN resolves a registration number to its TIN.
func (c *Client) LookupTIN(ctx context.Context, regNo string) (string, error) {
	query := url.Values{"regNo": {regNo}}
	body, err := c.doTPI(ctx, "/api/info/check/getTinInfo", query)
	if err != nil {
		return "", err
	}

	var response tinInfoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", apperror.NewRemoteError("TIN lookup returned an unreadable response")
	}
	if response.Status != http.StatusOK {
		return "", apperror.NewRemoteError("TIN lookup failed: " + response.Msg)
	}
	if response.Data == 0 {
		return "", apperror.NewNotFoundError("TIN for registration number " + regNo)
	}

	return strconv.FormatInt(response.Data, 10), nil
}

// FetchDistrictCodes returns the branch/district reference list.
func (c *Client) FetchDistrictCodes(ctx context.Context) ([]entity.DistrictCode, error) {
	body, err := c.doTPI(ctx, "/api/info/check/getBranchInfo", nil)
	if err != nil {
		return nil, err
	}

	var response branchInfoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, apperror.NewRemoteError("district code fetch returned an unreadable response")
	}
	if response.Status != http.StatusOK {
		return nil, apperror.NewRemoteError("district code fetch failed: " + response.Msg)
	}

	codes := make([]entity.DistrictCode, 0, len(response.Data))
	for _, row := range response.Data {
		codes = append(codes, entity.DistrictCode{
			BranchCode:   row.BranchCode,
			BranchName:   row.BranchName,
			DistrictCode: row.DistrictCode,
			DistrictName: row.DistrictName,
		})
	}
	return codes, nil
}

func (c *Client) doPosAPI(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.posAPIURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build PosAPI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Error("PosAPI request failed")
		return nil, apperror.NewTransportError("PosAPI is unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewTransportError("reading PosAPI response failed")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperror.NewRemoteError(fmt.Sprintf("PosAPI returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewRemoteError(fmt.Sprintf("PosAPI returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	return respBody, nil
}

func (c *Client) doTPI(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	token, err := c.tpiToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.tpiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build TPI request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Error("TPI request failed")
		return nil, apperror.NewTransportError("tax information service is unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewTransportError("reading TPI response failed")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked server side; drop the cache so the next call
		// re-authenticates.
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return nil, apperror.NewAuthError("tax information service rejected credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewRemoteError(fmt.Sprintf("tax information service returned status %d", resp.StatusCode))
	}

	return respBody, nil
}

// tpiToken returns a cached bearer token, fetching a fresh one via the
// password grant when the cache is empty or inside the leeway window.
func (c *Client) tpiToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(tokenLeeway).Before(c.tokenExpires) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {c.clientID},
		"username":   {c.username},
		"password":   {c.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build TPI token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Error("TPI token request failed")
		return "", apperror.NewTransportError("tax information auth service is unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperror.NewAuthError("tax information auth service rejected credentials")
	}

	var tokenResp tpiTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", apperror.NewRemoteError("TPI token response was unreadable")
	}
	if tokenResp.AccessToken == "" {
		return "", apperror.NewRemoteError("TPI token response did not contain a token")
	}

	c.token = tokenResp.AccessToken
	c.tokenExpires = c.now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return c.token, nil
}
