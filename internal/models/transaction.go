package models

import (
	"time"
)

// Supported MNO providers.
const (
	ProviderStanbic = "STANBIC"
	ProviderSelcom  = "SELCOM"
)

// Transaction kinds.
const (
	KindVerification = "VERIFICATION"
	KindPayment      = "PAYMENT"
)

// Canonical transaction statuses.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
	StatusTimeout    = "TIMEOUT"
)

// IsTerminalStatus reports whether no further provider-driven transition is
// expected from s.
func IsTerminalStatus(s string) bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusTimeout
}

// CanTransition reports whether a ledger row may move from one status to
// another. SUCCESS and FAILED are frozen. TIMEOUT is provisional: the
// provider never answered, so a later status query may supersede it. That is
// the only path out of a terminal state.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending, StatusProcessing:
		return to == StatusProcessing || IsTerminalStatus(to)
	case StatusTimeout:
		return to == StatusProcessing || IsTerminalStatus(to)
	default:
		return false
	}
}

// Transaction is the durable record of a single verification or payment
// relayed to an MNO backend. Rows are append-only: they are created at
// request intake and mutated only with provider outcomes, never deleted.
type Transaction struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID   string     `gorm:"column:transaction_id;size:100;uniqueIndex;not null" json:"transaction_id"`
	Reference       string     `gorm:"column:reference;size:100;not null;index" json:"reference"`
	Provider        string     `gorm:"column:mno_provider;size:20;not null;index" json:"mno_provider"`
	Kind            string     `gorm:"column:transaction_type;size:20;not null" json:"transaction_type"`
	ClientSystem    string     `gorm:"column:client_system;size:100;not null;index" json:"client_system"`
	ClientReference string     `gorm:"column:client_reference;size:100" json:"client_reference"`
	Amount          *float64   `gorm:"column:amount;type:decimal(15,2)" json:"amount"`
	Currency        string     `gorm:"column:currency;size:3;default:TZS" json:"currency"`
	PayerName       string     `gorm:"column:payer_name;size:255" json:"payer_name"`
	PayerPhone      string     `gorm:"column:payer_phone;size:20" json:"payer_phone"`
	PayerEmail      string     `gorm:"column:payer_email;size:255" json:"payer_email"`
	AccountID       string     `gorm:"column:account_id;size:100" json:"account_id"`
	InstitutionID   string     `gorm:"column:institution_id;size:100" json:"institution_id"`
	PaymentDesc     string     `gorm:"column:payment_desc;type:text" json:"payment_desc"`
	AmountType      string     `gorm:"column:amount_type;size:20" json:"amount_type"`
	Channel         string     `gorm:"column:channel;size:50" json:"channel"`
	TransactionDate *time.Time `gorm:"column:transaction_date" json:"transaction_date"`
	RawRequest      string     `gorm:"column:mno_request;type:longtext" json:"mno_request"`
	RawResponse     string     `gorm:"column:mno_response;type:longtext" json:"mno_response"`
	ProviderCode    string     `gorm:"column:mno_status_code;size:20" json:"mno_status_code"`
	Status          string     `gorm:"column:status;size:20;default:PENDING;index" json:"status"`
	ReceiptNumber   string     `gorm:"column:receipt_number;size:100" json:"receipt_number"`
	ReceiptDate     *time.Time `gorm:"column:receipt_date" json:"receipt_date"`
	ErrorMessage    string     `gorm:"column:error_message;type:text" json:"error_message"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
