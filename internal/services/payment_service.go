package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"powerpay-gateway/internal/models"
	"powerpay-gateway/pkg/common"

	"github.com/robfig/cron/v3"
)

var (
	ErrUnsupportedProvider  = errors.New("unsupported provider")
	ErrUnsupportedOperation = errors.New("operation not supported by provider")
)

// CashinProvider is the optional wallet cash-in capability.
type CashinProvider interface {
	Provider
	WalletCashin(ctx context.Context, req PaymentRequest) ProviderResult
}

// PaymentService orchestrates a request end to end: validate the provider,
// open a ledger row, drive the adapter, record the normalized outcome and
// shape the caller-facing response.
type PaymentService struct {
	Transactions *TransactionService
	Providers    map[string]Provider
}

func NewPaymentService(transactions *TransactionService, providers ...Provider) *PaymentService {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &PaymentService{Transactions: transactions, Providers: m}
}

type VerifyDTO struct {
	Reference       string `json:"reference"`
	Provider        string `json:"mno_provider"`
	ClientSystem    string `json:"client_system"`
	ClientReference string `json:"client_reference"`
	UtilityCode     string `json:"utility_code"`
}

type PayDTO struct {
	Reference       string  `json:"reference"`
	Amount          float64 `json:"amount"`
	Provider        string  `json:"mno_provider"`
	ClientSystem    string  `json:"client_system"`
	ClientReference string  `json:"client_reference"`
	PayerName       string  `json:"payer_name"`
	PayerPhone      string  `json:"payer_phone"`
	PayerEmail      string  `json:"payer_email"`
	AccountID       string  `json:"account_id"`
	PaymentDesc     string  `json:"payment_desc"`
	Channel         string  `json:"channel"`
	Currency        string  `json:"currency"`
	AmountType      string  `json:"amount_type"`
	AccOpt          string  `json:"acc_opt"`
	UtilityCode     string  `json:"utility_code"`
}

// PaymentResponse is the unified caller-facing result of a verify or pay.
type PaymentResponse struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Provider      string          `json:"mno_provider"`
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	Amount        *float64        `json:"amount,omitempty"`
	Receipt       string          `json:"receipt,omitempty"`
	ReceiptDate   *time.Time      `json:"receipt_date,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// resolveProvider validates the provider name case-insensitively. Nothing is
// written to the ledger before this check passes.
func (s *PaymentService) resolveProvider(name string) (Provider, string, error) {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	p, ok := s.Providers[canonical]
	if !ok {
		return nil, canonical, ErrUnsupportedProvider
	}
	return p, canonical, nil
}

// VerifyPayment relays a biller/utility verification.
func (s *PaymentService) VerifyPayment(ctx context.Context, dto VerifyDTO) (*PaymentResponse, error) {
	provider, name, err := s.resolveProvider(dto.Provider)
	if err != nil {
		return nil, err
	}
	verifier, ok := provider.(Verifier)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no verification", ErrUnsupportedOperation, name)
	}

	rawRequest, _ := json.Marshal(dto)
	trx := &models.Transaction{
		TransactionID:   common.GenerateTransactionID(),
		Reference:       dto.Reference,
		Provider:        name,
		Kind:            models.KindVerification,
		ClientSystem:    dto.ClientSystem,
		ClientReference: dto.ClientReference,
		RawRequest:      string(rawRequest),
	}
	if err := s.Transactions.Create(trx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	if err := s.Transactions.SetStatus(trx.TransactionID, models.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	res := verifier.Verify(ctx, VerifyRequest{
		Reference:     dto.Reference,
		UtilityCode:   defaultString(dto.UtilityCode, "GEPG"),
		TransactionID: trx.TransactionID,
	})

	if _, err := s.record(trx.TransactionID, res); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		Success:       res.Success,
		TransactionID: trx.TransactionID,
		Reference:     dto.Reference,
		Provider:      name,
		Status:        res.Status,
		Message:       res.Message,
		Data:          rawData(res.Raw),
	}, nil
}

// ProcessPayment relays a payment posting.
func (s *PaymentService) ProcessPayment(ctx context.Context, dto PayDTO) (*PaymentResponse, error) {
	return s.post(ctx, dto, false)
}

// ProcessCashin relays a wallet cash-in. Selcom only.
func (s *PaymentService) ProcessCashin(ctx context.Context, dto PayDTO) (*PaymentResponse, error) {
	return s.post(ctx, dto, true)
}

func (s *PaymentService) post(ctx context.Context, dto PayDTO, cashin bool) (*PaymentResponse, error) {
	provider, name, err := s.resolveProvider(dto.Provider)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	amount := dto.Amount
	rawRequest, _ := json.Marshal(dto)
	trx := &models.Transaction{
		TransactionID:   common.GenerateTransactionID(),
		Reference:       dto.Reference,
		Provider:        name,
		Kind:            models.KindPayment,
		ClientSystem:    dto.ClientSystem,
		ClientReference: dto.ClientReference,
		Amount:          &amount,
		Currency:        defaultString(dto.Currency, "TZS"),
		PayerName:       dto.PayerName,
		PayerPhone:      dto.PayerPhone,
		PayerEmail:      dto.PayerEmail,
		AccountID:       dto.AccountID,
		PaymentDesc:     dto.PaymentDesc,
		AmountType:      dto.AmountType,
		Channel:         defaultString(dto.Channel, "API"),
		TransactionDate: &now,
		RawRequest:      string(rawRequest),
	}

	req := PaymentRequest{
		TransactionID:   "",
		Reference:       dto.Reference,
		UtilityCode:     defaultString(dto.UtilityCode, "GEPG"),
		Amount:          dto.Amount,
		PayerName:       dto.PayerName,
		PayerPhone:      dto.PayerPhone,
		PayerEmail:      dto.PayerEmail,
		PaymentDesc:     dto.PaymentDesc,
		Channel:         defaultString(dto.Channel, "API"),
		Currency:        defaultString(dto.Currency, "TZS"),
		AmountType:      dto.AmountType,
		AccOpt:          dto.AccOpt,
		TransactionDate: now,
	}

	var call func(context.Context, PaymentRequest) ProviderResult
	if cashin {
		cp, ok := provider.(CashinProvider)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no wallet cash-in", ErrUnsupportedOperation, name)
		}
		call = cp.WalletCashin
	} else {
		payer, ok := provider.(Payer)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no payment posting", ErrUnsupportedOperation, name)
		}
		call = payer.Pay
	}

	if err := s.Transactions.Create(trx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	if err := s.Transactions.SetStatus(trx.TransactionID, models.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}

	req.TransactionID = trx.TransactionID
	res := call(ctx, req)

	if _, err := s.record(trx.TransactionID, res); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		Success:       res.Success,
		TransactionID: trx.TransactionID,
		Reference:     dto.Reference,
		Provider:      name,
		Status:        res.Status,
		Message:       res.Message,
		Amount:        &amount,
		Receipt:       res.Receipt,
		ReceiptDate:   res.ReceiptDate,
		Data:          rawData(res.Raw),
	}, nil
}

// record persists a provider outcome on the ledger row.
func (s *PaymentService) record(transactionID string, res ProviderResult) (*models.Transaction, error) {
	errorMessage := ""
	if !res.Success {
		errorMessage = res.Message
	}

	trx, err := s.Transactions.RecordProviderResponse(transactionID, ProviderUpdate{
		RawResponse:   res.Raw,
		ProviderCode:  res.Code,
		Status:        res.Status,
		ReceiptNumber: res.Receipt,
		ReceiptDate:   res.ReceiptDate,
		ErrorMessage:  errorMessage,
	})
	if err != nil {
		return trx, fmt.Errorf("record provider response for %s: %w", transactionID, err)
	}
	return trx, nil
}

// QueryResponse is the caller-facing transaction status.
type QueryResponse struct {
	Success       bool       `json:"success"`
	TransactionID string     `json:"transaction_id"`
	Reference     string     `json:"reference"`
	Provider      string     `json:"mno_provider"`
	Status        string     `json:"status"`
	Amount        *float64   `json:"amount,omitempty"`
	Receipt       string     `json:"receipt,omitempty"`
	Message       string     `json:"message,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// QueryTransaction reconciles a transaction's status. SUCCESS and FAILED are
// answered from the ledger with no provider call. A non-settled Selcom
// transaction is re-queried upstream; Stanbic has no query endpoint, so the
// ledger is authoritative.
func (s *PaymentService) QueryTransaction(ctx context.Context, transactionID string) (*QueryResponse, error) {
	trx, err := s.Transactions.FindByID(transactionID)
	if err != nil {
		return nil, err
	}

	if trx.Status == models.StatusSuccess || trx.Status == models.StatusFailed {
		return &QueryResponse{
			Success:       true,
			TransactionID: trx.TransactionID,
			Reference:     trx.Reference,
			Provider:      trx.Provider,
			Status:        trx.Status,
			Amount:        trx.Amount,
			Receipt:       trx.ReceiptNumber,
			Message:       trx.ErrorMessage,
			CreatedAt:     &trx.CreatedAt,
			UpdatedAt:     &trx.UpdatedAt,
		}, nil
	}

	if trx.Provider == models.ProviderStanbic {
		return &QueryResponse{
			Success:       trx.Status == models.StatusSuccess,
			TransactionID: trx.TransactionID,
			Reference:     trx.Reference,
			Provider:      trx.Provider,
			Status:        trx.Status,
			Amount:        trx.Amount,
			Message:       defaultString(trx.ErrorMessage, "Transaction in progress"),
		}, nil
	}

	provider, ok := s.Providers[trx.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, trx.Provider)
	}
	querier, ok := provider.(StatusQuerier)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no status query", ErrUnsupportedOperation, trx.Provider)
	}

	res := querier.QueryStatus(ctx, transactionID)

	// Only a real provider answer updates the ledger; a transport failure
	// on the query itself must not disturb the stored state.
	if !res.Transport {
		updated, err := s.record(transactionID, res)
		if err != nil && !errors.Is(err, ErrIllegalTransition) {
			return nil, err
		}
		if updated != nil {
			trx = updated
		}
	}

	return &QueryResponse{
		Success:       res.Success,
		TransactionID: trx.TransactionID,
		Reference:     trx.Reference,
		Provider:      trx.Provider,
		Status:        trx.Status,
		Amount:        trx.Amount,
		Receipt:       trx.ReceiptNumber,
		Message:       res.Message,
	}, nil
}

// TransactionSummary is one row of a client system's history.
type TransactionSummary struct {
	TransactionID string     `json:"transaction_id"`
	Reference     string     `json:"reference"`
	Provider      string     `json:"mno_provider"`
	Kind          string     `json:"transaction_type"`
	Amount        *float64   `json:"amount"`
	Status        string     `json:"status"`
	Receipt       string     `json:"receipt"`
	CreatedAt     time.Time  `json:"created_at"`
}

// History lists a client system's transactions, newest first.
func (s *PaymentService) History(clientSystem string, limit, offset int) ([]TransactionSummary, error) {
	rows, err := s.Transactions.FindByClientSystem(clientSystem, limit, offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]TransactionSummary, len(rows))
	for i, trx := range rows {
		summaries[i] = TransactionSummary{
			TransactionID: trx.TransactionID,
			Reference:     trx.Reference,
			Provider:      trx.Provider,
			Kind:          trx.Kind,
			Amount:        trx.Amount,
			Status:        trx.Status,
			Receipt:       trx.ReceiptNumber,
			CreatedAt:     trx.CreatedAt,
		}
	}
	return summaries, nil
}

// BalanceResponse is the caller-facing vendor float balance.
type BalanceResponse struct {
	Success bool   `json:"success"`
	Balance string `json:"balance,omitempty"`
	Message string `json:"message"`
}

// GetBalance probes the Selcom vendor float balance. The probe id is not a
// ledger transaction.
func (s *PaymentService) GetBalance(ctx context.Context) (*BalanceResponse, error) {
	provider, ok := s.Providers[models.ProviderSelcom]
	if !ok {
		return nil, fmt.Errorf("%w: SELCOM", ErrUnsupportedProvider)
	}
	fetcher, ok := provider.(BalanceFetcher)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no balance", ErrUnsupportedOperation, provider.Name())
	}

	res := fetcher.Balance(ctx, common.GenerateProbeID())
	return &BalanceResponse{
		Success: res.Success,
		Balance: res.Balance,
		Message: res.Message,
	}, nil
}

// Stats aggregates ledger rows by provider and status.
func (s *PaymentService) Stats(provider string, from, to *time.Time) ([]StatRow, error) {
	if provider != "" {
		_, name, err := s.resolveProvider(provider)
		if err != nil {
			return nil, err
		}
		provider = name
	}
	return s.Transactions.AggregateStats(provider, from, to)
}

// StartScheduler logs a daily snapshot of the per-provider/status counts.
// Read-only: it never touches transaction rows.
func (s *PaymentService) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("0 0 * * *", func() {
		rows, err := s.Transactions.AggregateStats("", nil, nil)
		if err != nil {
			log.Printf("Error collecting daily stats: %v", err)
			return
		}
		for _, row := range rows {
			log.Printf("Daily stats: provider=%s status=%s count=%d total=%.2f", row.Provider, row.Status, row.Count, row.TotalAmount)
		}
	})
	if err != nil {
		log.Printf("Error scheduling daily stats: %v", err)
		return
	}
	c.Start()
	log.Println("PaymentService scheduler started (daily stats at midnight)")
}

// rawData exposes a provider payload to API callers only when it is valid
// JSON; malformed bodies stay in the audit column.
func rawData(body []byte) json.RawMessage {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	return nil
}
