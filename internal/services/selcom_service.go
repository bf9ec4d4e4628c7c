package services

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"
	"time"

	"powerpay-gateway/internal/config"
	"powerpay-gateway/internal/models"
	"powerpay-gateway/pkg/common"
	"powerpay-gateway/pkg/signing"

	"github.com/sony/gobreaker"
)

// SelcomService talks to the Selcom utility-payment API. Capabilities:
// verify (utility lookup), pay, wallet cash-in, status query and vendor
// balance.
type SelcomService struct {
	cfg     config.SelcomConfig
	breaker *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewSelcomService(cfg config.SelcomConfig) *SelcomService {
	return &SelcomService{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "selcom",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		now: time.Now,
	}
}

func (s *SelcomService) Name() string {
	return models.ProviderSelcom
}

// headers builds the Selcom auth header set for a request whose signed
// fields, in order, are the given ones.
func (s *SelcomService) headers(fields []signing.Field) map[string]string {
	timestamp := s.now().Format(time.RFC3339)
	data := signing.SelcomSignedData(timestamp, fields)

	return map[string]string{
		"Authorization": "SELCOM " + base64.StdEncoding.EncodeToString([]byte(s.cfg.APIKey)),
		"Timestamp":     timestamp,
		"Digest-Method": "HS256",
		"Digest":        signing.SelcomDigest(s.cfg.APISecret, data),
		"Signed-Fields": signing.SignedFieldNames(fields),
	}
}

// Verify performs a utility lookup for the reference.
func (s *SelcomService) Verify(ctx context.Context, req VerifyRequest) ProviderResult {
	fields := []signing.Field{
		{Name: "utilitycode", Value: req.UtilityCode},
		{Name: "utilityref", Value: req.Reference},
		{Name: "transid", Value: req.TransactionID},
	}

	params := url.Values{}
	for _, f := range fields {
		params.Set(f.Name, f.Value)
	}

	resp, err := s.get(ctx, "/v1/utilitypayment/lookup", params, fields, LookupTimeout)
	if err != nil {
		return s.transportFailure(err)
	}
	return s.result(resp)
}

func (s *SelcomService) Pay(ctx context.Context, req PaymentRequest) ProviderResult {
	return s.process(ctx, "/v1/utilitypayment/process", req)
}

// WalletCashin pushes funds to a subscriber wallet. Same wire shape as a
// utility payment against the cash-in endpoint.
func (s *SelcomService) WalletCashin(ctx context.Context, req PaymentRequest) ProviderResult {
	req.UtilityCode = defaultString(req.UtilityCode, "CASHIN")
	return s.process(ctx, "/v1/walletcashin/process", req)
}

func (s *SelcomService) process(ctx context.Context, path string, req PaymentRequest) ProviderResult {
	amount := formatAmount(req.Amount)
	fields := []signing.Field{
		{Name: "transid", Value: req.TransactionID},
		{Name: "utilitycode", Value: req.UtilityCode},
		{Name: "utilityref", Value: req.Reference},
		{Name: "amount", Value: amount},
		{Name: "vendor", Value: s.cfg.VendorID},
		{Name: "pin", Value: s.cfg.VendorPIN},
		{Name: "msisdn", Value: req.PayerPhone},
	}

	body := map[string]interface{}{
		"transid":     req.TransactionID,
		"utilitycode": req.UtilityCode,
		"utilityref":  req.Reference,
		"amount":      req.Amount,
		"vendor":      s.cfg.VendorID,
		"pin":         s.cfg.VendorPIN,
		"msisdn":      req.PayerPhone,
	}

	resp, err := s.post(ctx, path, body, fields, PaymentTimeout)
	if err != nil {
		return s.transportFailure(err)
	}
	return s.result(resp)
}

func (s *SelcomService) QueryStatus(ctx context.Context, transID string) ProviderResult {
	fields := []signing.Field{{Name: "transid", Value: transID}}

	params := url.Values{}
	params.Set("transid", transID)

	resp, err := s.get(ctx, "/v1/utilitypayment/query", params, fields, LookupTimeout)
	if err != nil {
		return s.transportFailure(err)
	}
	return s.result(resp)
}

// Balance fetches the vendor float balance. transID is a per-probe id, not a
// ledger transaction.
func (s *SelcomService) Balance(ctx context.Context, transID string) ProviderResult {
	fields := []signing.Field{
		{Name: "vendor", Value: s.cfg.VendorID},
		{Name: "pin", Value: s.cfg.VendorPIN},
		{Name: "transid", Value: transID},
	}

	body := map[string]interface{}{
		"vendor":  s.cfg.VendorID,
		"pin":     s.cfg.VendorPIN,
		"transid": transID,
	}

	resp, err := s.post(ctx, "/v1/vendor/balance", body, fields, LookupTimeout)
	if err != nil {
		return s.transportFailure(err)
	}
	return s.result(resp)
}

func (s *SelcomService) get(ctx context.Context, path string, params url.Values, fields []signing.Field, timeout time.Duration) (*common.HTTPResponse, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return common.Get(ctx, s.cfg.BaseURL+path, params, s.headers(fields), timeout)
	})
	if err != nil {
		return nil, err
	}
	return out.(*common.HTTPResponse), nil
}

func (s *SelcomService) post(ctx context.Context, path string, body interface{}, fields []signing.Field, timeout time.Duration) (*common.HTTPResponse, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return common.PostJSON(ctx, s.cfg.BaseURL+path, body, s.headers(fields), timeout)
	})
	if err != nil {
		return nil, err
	}
	return out.(*common.HTTPResponse), nil
}

// transportFailure normalizes a timeout, connection failure or open breaker
// to the reserved result code before the status mapping is applied, so the
// outcome is recorded as TIMEOUT rather than FAILED.
func (s *SelcomService) transportFailure(err error) ProviderResult {
	return ProviderResult{
		Success:   false,
		Status:    SelcomStatus(SelcomTransportCode),
		Code:      SelcomTransportCode,
		Message:   err.Error(),
		Transport: true,
	}
}

func (s *SelcomService) result(resp *common.HTTPResponse) ProviderResult {
	code := ""
	message := ""
	if resp.JSON != nil {
		code, _ = resp.JSON["resultcode"].(string)
		message, _ = resp.JSON["message"].(string)
	}

	res := ProviderResult{
		Success: code == "000",
		Status:  SelcomStatus(code),
		Code:    code,
		Message: message,
		Raw:     resp.Body,
	}

	// Receipt and balance ride in the first element of the data array when
	// present; payments may also carry a top-level reference.
	if data, ok := resp.JSON["data"].([]interface{}); ok && len(data) > 0 {
		if first, ok := data[0].(map[string]interface{}); ok {
			if receipt, ok := first["receipt"].(string); ok {
				res.Receipt = receipt
			}
			switch balance := first["balance"].(type) {
			case string:
				res.Balance = balance
			case float64:
				res.Balance = formatAmount(balance)
			}
		}
	}
	if res.Receipt == "" {
		if ref, ok := resp.JSON["reference"].(string); ok {
			res.Receipt = ref
		}
	}
	return res
}

// formatAmount renders an amount the way it appears in the signed canonical
// string, with no trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
