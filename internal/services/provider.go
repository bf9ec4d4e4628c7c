package services

import (
	"context"
	"time"
)

// Provider call timeouts. Payments get more time than lookups.
const (
	LookupTimeout  = 30 * time.Second
	PaymentTimeout = 60 * time.Second
)

// ProviderResult is the normalized outcome of any adapter call. Adapters
// never return transport errors to callers; every failure path collapses
// into a result with Success=false.
type ProviderResult struct {
	Success     bool
	Status      string // canonical status, models.Status*
	Code        string // provider-specific result/status code
	Message     string
	Receipt     string
	ReceiptDate *time.Time
	Balance     string
	Raw         []byte // provider response body, stored verbatim for audit
	Transport   bool   // true when no provider response was received at all
}

// VerifyRequest carries a biller/utility verification to an adapter.
type VerifyRequest struct {
	Reference     string
	UtilityCode   string // Selcom only
	TransactionID string
}

// PaymentRequest carries a payment posting to an adapter. Fields not
// understood by a given provider are ignored by its adapter.
type PaymentRequest struct {
	TransactionID   string
	Reference       string
	UtilityCode     string
	Amount          float64
	PayerName       string
	PayerPhone      string
	PayerEmail      string
	PaymentDesc     string
	Channel         string
	Currency        string
	AmountType      string
	AccOpt          string
	TransactionDate time.Time
}

// Provider is the base capability every adapter implements. The optional
// operations are separate interfaces; the orchestrator checks for them and
// reports an unsupported operation instead of silently ignoring the call.
type Provider interface {
	Name() string
}

type Verifier interface {
	Provider
	Verify(ctx context.Context, req VerifyRequest) ProviderResult
}

type Payer interface {
	Provider
	Pay(ctx context.Context, req PaymentRequest) ProviderResult
}

type StatusQuerier interface {
	Provider
	QueryStatus(ctx context.Context, transID string) ProviderResult
}

type BalanceFetcher interface {
	Provider
	Balance(ctx context.Context, transID string) ProviderResult
}
