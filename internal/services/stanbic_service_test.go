package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"powerpay-gateway/internal/config"
	"powerpay-gateway/internal/models"
	"powerpay-gateway/pkg/signing"

	"github.com/stretchr/testify/assert"
)

func stanbicTestService(baseURL string) *StanbicService {
	return NewStanbicService(config.StanbicConfig{
		BaseURL:       baseURL,
		InstitutionID: "INST01",
		Token:         "stanbic-shared-token",
	})
}

func TestStanbicVerifySuccess(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/biller/verify", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"statusCode": 200,
			"message":    "Reference is valid",
		})
	}))
	defer server.Close()

	svc := stanbicTestService(server.URL)
	res := svc.Verify(context.Background(), VerifyRequest{Reference: "991060011846", TransactionID: "TXN-1"})

	assert.True(t, res.Success)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "200", res.Code)
	assert.Equal(t, "Reference is valid", res.Message)
	assert.False(t, res.Transport)
	assert.NotEmpty(t, res.Raw)

	assert.Equal(t, "991060011846", received["reference"])
	assert.Equal(t, "INST01", received["institutionId"])
	assert.Equal(t, "stanbic-shared-token", received["token"])
	assert.Equal(t, signing.StanbicChecksum("stanbic-shared-token", "991060011846"), received["checksum"])
}

func TestStanbicVerifyKnownErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"statusCode": 203})
	}))
	defer server.Close()

	svc := stanbicTestService(server.URL)
	res := svc.Verify(context.Background(), VerifyRequest{Reference: "BAD-REF"})

	assert.False(t, res.Success)
	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Equal(t, "203", res.Code)
	assert.Equal(t, "Invalid payment reference", res.Message)
}

func TestStanbicPaySuccess(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/biller/pay", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"statusCode": 200,
			"message":    "Success",
			"data": map[string]interface{}{
				"receipt":     "RCT-881",
				"receiptDate": "2024-01-15T10:00:00Z",
			},
		})
	}))
	defer server.Close()

	svc := stanbicTestService(server.URL)
	res := svc.Pay(context.Background(), PaymentRequest{
		TransactionID: "TXN-42",
		Reference:     "REF001",
		Amount:        50000,
		PayerName:     "John Doe",
	})

	assert.True(t, res.Success)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "RCT-881", res.Receipt)
	if assert.NotNil(t, res.ReceiptDate) {
		assert.Equal(t, 2024, res.ReceiptDate.Year())
	}

	// Defaults applied when the caller leaves them empty
	assert.Equal(t, "001", received["accOpt"])
	assert.Equal(t, "FULL", received["amountType"])
	assert.Equal(t, "TZS", received["currency"])
	assert.Equal(t, "API", received["channel"])
	assert.Equal(t, "TXN-42", received["transactionId"])
	assert.Equal(t, float64(50000), received["amount"])
	assert.NotEmpty(t, received["transactionDate"])
	assert.Equal(t, signing.StanbicChecksum("stanbic-shared-token", "REF001"), received["checksum"])
}

func TestStanbicMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	svc := stanbicTestService(server.URL)
	res := svc.Verify(context.Background(), VerifyRequest{Reference: "991060011846"})

	assert.False(t, res.Success)
	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Equal(t, "502", res.Code)
}

func TestStanbicTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := stanbicTestService(server.URL)
	res := svc.Verify(context.Background(), VerifyRequest{Reference: "991060011846"})

	assert.False(t, res.Success)
	assert.True(t, res.Transport)
	assert.Equal(t, models.StatusFailed, res.Status)
	assert.Equal(t, "500", res.Code)
	assert.NotEmpty(t, res.Message)
}
