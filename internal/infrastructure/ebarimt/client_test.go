package ebarimt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEbarimtClient(t *testing.T, posAPI, tpi http.Handler) (*Client, func()) {
	t.Helper()

	posServer := httptest.NewServer(posAPI)

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.Form.Get("grant_type"))
		assert.Equal(t, "vatps", r.Form.Get("client_id"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tpi-token",
			"expires_in":   3600,
		})
	})
	if tpi != nil {
		mux.Handle("/", tpi)
	}
	tpiServer := httptest.NewServer(mux)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	client := NewClient(&config.EbarimtConfig{
		PosAPIURL:   posServer.URL,
		TPIURL:      tpiServer.URL,
		TPIAuthURL:  tpiServer.URL + "/token",
		TPIClientID: "vatps",
		TPIUsername: "operator",
		TPIPassword: "secret",
		Timeout:     5 * time.Second,
	}, log)
	client.httpClient = posServer.Client()

	return client, func() {
		posServer.Close()
		tpiServer.Close()
	}
}

func TestSubmitReceiptSuccess(t *testing.T) {
	posAPI := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/rest/receipt", r.URL.Path)

		var body ReceiptRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "12345678", body.MerchantTIN)
		assert.Equal(t, "B2C_RECEIPT", body.Type)
		require.Len(t, body.Receipts, 1)
		assert.Equal(t, "VAT_ABLE", body.Receipts[0].TaxType)

		json.NewEncoder(w).Encode(ReceiptResponse{
			ID:      "0000123456789",
			Lottery: "AB12345678",
			QRData:  "qr-payload",
			Status:  PosStatusSuccess,
		})
	})

	client, cleanup := newTestEbarimtClient(t, posAPI, nil)
	defer cleanup()

	response, err := client.SubmitReceipt(context.Background(), &ReceiptRequest{
		MerchantTIN:  "12345678",
		PosNo:        "10012345",
		BranchNo:     "001",
		DistrictCode: "2301",
		Type:         "B2C_RECEIPT",
		TotalAmount:  Money(decimal.NewFromInt(10000)),
		Receipts: []ReceiptGroupPayload{
			{TaxType: "VAT_ABLE", TotalAmount: Money(decimal.NewFromInt(10000))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "0000123456789", response.ID)
	assert.Equal(t, "AB12345678", response.Lottery)
}

func TestSubmitReceiptRejected(t *testing.T) {
	posAPI := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ReceiptResponse{
			Status:  PosStatusError,
			Message: "invalid district code",
		})
	})

	client, cleanup := newTestEbarimtClient(t, posAPI, nil)
	defer cleanup()

	response, err := client.SubmitReceipt(context.Background(), &ReceiptRequest{Type: "B2C_RECEIPT"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindRemote))
	require.NotNil(t, response)
	assert.Equal(t, "invalid district code", response.Message)
}

func TestSubmitReceiptUnreachable(t *testing.T) {
	client, cleanup := newTestEbarimtClient(t, http.NotFoundHandler(), nil)
	cleanup()

	_, err := client.SubmitReceipt(context.Background(), &ReceiptRequest{Type: "B2C_RECEIPT"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindTransport))
}

func TestLookupTaxpayer(t *testing.T) {
	var authHeader string
	tpi := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/info/check/getInfo", r.URL.Path)
		assert.Equal(t, "37900846", r.URL.Query().Get("tin"))
		authHeader = r.Header.Get("Authorization")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": 200,
			"data": map[string]interface{}{
				"name":      "Test Merchant LLC",
				"found":     true,
				"vatPayer":  true,
				"cityPayer": false,
			},
		})
	})

	client, cleanup := newTestEbarimtClient(t, http.NotFoundHandler(), tpi)
	defer cleanup()

	info, err := client.LookupTaxpayer(context.Background(), "37900846")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tpi-token", authHeader)
	assert.Equal(t, "Test Merchant LLC", info.Name)
	assert.True(t, info.Found)
	assert.True(t, info.VATPayer)
	assert.False(t, info.CityPayer)
}

func TestFetchDistrictCodes(t *testing.T) {
	tpi := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/info/check/getBranchInfo", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": 200,
			"data": []map[string]string{
				{"branchCode": "001", "branchName": "Ulaanbaatar", "districtCode": "2301", "districtName": "Bayangol"},
			},
		})
	})

	client, cleanup := newTestEbarimtClient(t, http.NotFoundHandler(), tpi)
	defer cleanup()

	codes, err := client.FetchDistrictCodes(context.Background())
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "2301", codes[0].DistrictCode)
	assert.Equal(t, "Bayangol", codes[0].DistrictName)
}

func TestLookupTINNotFound(t *testing.T) {
	tpi := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": 200, "data": 0})
	})

	client, cleanup := newTestEbarimtClient(t, http.NotFoundHandler(), tpi)
	defer cleanup()

	_, err := client.LookupTIN(context.Background(), "UK99112233")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
