package services

import (
	"context"
	"strconv"
	"time"

	"powerpay-gateway/internal/config"
	"powerpay-gateway/internal/models"
	"powerpay-gateway/pkg/common"
	"powerpay-gateway/pkg/signing"

	"github.com/sony/gobreaker"
)

// StanbicService talks to the Stanbic biller API. Capabilities: verify and
// pay. Stanbic exposes no status-query or balance endpoint.
type StanbicService struct {
	cfg     config.StanbicConfig
	breaker *gobreaker.CircuitBreaker
}

func NewStanbicService(cfg config.StanbicConfig) *StanbicService {
	return &StanbicService{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "stanbic",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (s *StanbicService) Name() string {
	return models.ProviderStanbic
}

// Checksum computes the request checksum for a reference under this
// adapter's shared token.
func (s *StanbicService) Checksum(reference string) string {
	return signing.StanbicChecksum(s.cfg.Token, reference)
}

func (s *StanbicService) Verify(ctx context.Context, req VerifyRequest) ProviderResult {
	body := map[string]interface{}{
		"reference":     req.Reference,
		"institutionId": s.cfg.InstitutionID,
		"checksum":      s.Checksum(req.Reference),
		"token":         s.cfg.Token,
	}

	resp, err := s.post(ctx, "/biller/verify", body, LookupTimeout)
	if err != nil {
		return s.transportFailure(err)
	}
	return s.result(resp)
}

func (s *StanbicService) Pay(ctx context.Context, req PaymentRequest) ProviderResult {
	transactionDate := req.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = time.Now()
	}

	body := map[string]interface{}{
		"reference":       req.Reference,
		"amount":          req.Amount,
		"institutionId":   s.cfg.InstitutionID,
		"payerName":       req.PayerName,
		"accOpt":          defaultString(req.AccOpt, "001"),
		"amountType":      defaultString(req.AmountType, "FULL"),
		"currency":        defaultString(req.Currency, "TZS"),
		"paymentDesc":     req.PaymentDesc,
		"payerPhone":      req.PayerPhone,
		"payerEmail":      req.PayerEmail,
		"channel":         defaultString(req.Channel, "API"),
		"transactionDate": transactionDate.Format(time.RFC3339),
		"transactionId":   req.TransactionID,
		"checksum":        s.Checksum(req.Reference),
	}

	resp, err := s.post(ctx, "/biller/pay", body, PaymentTimeout)
	if err != nil {
		return s.transportFailure(err)
	}
	return s.result(resp)
}

func (s *StanbicService) post(ctx context.Context, path string, body interface{}, timeout time.Duration) (*common.HTTPResponse, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return common.PostJSON(ctx, s.cfg.BaseURL+path, body, nil, timeout)
	})
	if err != nil {
		return nil, err
	}
	return out.(*common.HTTPResponse), nil
}

// transportFailure converts a timeout, connection failure or open breaker
// into a failed result. Stanbic has no asynchronous states, so transport
// failures are FAILED rather than TIMEOUT.
func (s *StanbicService) transportFailure(err error) ProviderResult {
	return ProviderResult{
		Success:   false,
		Status:    models.StatusFailed,
		Code:      "500",
		Message:   err.Error(),
		Transport: true,
	}
}

func (s *StanbicService) result(resp *common.HTTPResponse) ProviderResult {
	code := 0
	message := ""
	if resp.JSON != nil {
		if v, ok := resp.JSON["statusCode"].(float64); ok {
			code = int(v)
		}
		message, _ = resp.JSON["message"].(string)
	}
	if code == 0 {
		// Malformed or empty body: fall back to the HTTP status.
		code = resp.StatusCode
	}

	success := code == 200
	if message == "" && !success {
		message = StanbicErrorMessage(code)
	}

	res := ProviderResult{
		Success: success,
		Status:  StanbicStatus(code),
		Code:    strconv.Itoa(code),
		Message: message,
		Raw:     resp.Body,
	}

	if data, ok := resp.JSON["data"].(map[string]interface{}); ok {
		if receipt, ok := data["receipt"].(string); ok {
			res.Receipt = receipt
		}
		if rd, ok := data["receiptDate"].(string); ok {
			res.ReceiptDate = parseProviderTime(rd)
		}
	}
	return res
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// parseProviderTime parses the date formats providers have been seen to
// return. Unparseable values are dropped; the verbatim payload is kept in
// the raw response either way.
func parseProviderTime(v string) *time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
