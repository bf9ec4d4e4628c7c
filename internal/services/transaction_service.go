package services

import (
	"errors"
	"log"
	"time"

	"powerpay-gateway/internal/models"
	"powerpay-gateway/pkg/common"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrIllegalTransition    = errors.New("illegal status transition")
)

// TransactionService is the transaction ledger. Rows are created at request
// intake and updated with provider outcomes; nothing is ever deleted.
type TransactionService struct {
	DB *gorm.DB
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{DB: db}
}

// Create inserts a new ledger row. A transaction id is assigned when the
// caller did not supply one; the initial status defaults to PENDING.
func (s *TransactionService) Create(trx *models.Transaction) error {
	if trx.TransactionID == "" {
		trx.TransactionID = common.GenerateTransactionID()
	}
	if trx.Status == "" {
		trx.Status = models.StatusPending
	}
	if trx.ClientSystem == "" {
		trx.ClientSystem = "API"
	}
	if trx.Currency == "" {
		trx.Currency = "TZS"
	}

	if err := s.DB.Create(trx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

// ProviderUpdate is the mutable slice of a ledger row overwritten after a
// provider call.
type ProviderUpdate struct {
	RawResponse   []byte
	ProviderCode  string
	Status        string
	ReceiptNumber string
	ReceiptDate   *time.Time
	ErrorMessage  string
}

// RecordProviderResponse writes a provider outcome back to the ledger. The
// status transition table is enforced here: an update that would move a row
// out of SUCCESS or FAILED is refused and logged.
func (s *TransactionService) RecordProviderResponse(transactionID string, upd ProviderUpdate) (*models.Transaction, error) {
	var trx models.Transaction
	if err := s.DB.Where("transaction_id = ?", transactionID).First(&trx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	if !models.CanTransition(trx.Status, upd.Status) {
		log.Printf("Refusing status transition %s -> %s for %s", trx.Status, upd.Status, transactionID)
		return &trx, ErrIllegalTransition
	}

	values := map[string]interface{}{
		"mno_response":    string(upd.RawResponse),
		"mno_status_code": upd.ProviderCode,
		"status":          upd.Status,
		"receipt_number":  upd.ReceiptNumber,
		"receipt_date":    upd.ReceiptDate,
		"error_message":   upd.ErrorMessage,
	}
	if err := s.DB.Model(&trx).Updates(values).Error; err != nil {
		return nil, err
	}

	trx.RawResponse = string(upd.RawResponse)
	trx.ProviderCode = upd.ProviderCode
	trx.Status = upd.Status
	trx.ReceiptNumber = upd.ReceiptNumber
	trx.ReceiptDate = upd.ReceiptDate
	trx.ErrorMessage = upd.ErrorMessage
	return &trx, nil
}

// SetStatus moves a row to a new status, subject to the transition table.
func (s *TransactionService) SetStatus(transactionID, status, errorMessage string) error {
	var trx models.Transaction
	if err := s.DB.Where("transaction_id = ?", transactionID).First(&trx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	if !models.CanTransition(trx.Status, status) {
		log.Printf("Refusing status transition %s -> %s for %s", trx.Status, status, transactionID)
		return ErrIllegalTransition
	}

	return s.DB.Model(&trx).Updates(map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}).Error
}

func (s *TransactionService) FindByID(transactionID string) (*models.Transaction, error) {
	var trx models.Transaction
	if err := s.DB.Where("transaction_id = ?", transactionID).First(&trx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// FindByReference returns the most recent transaction for a business
// reference. References are not unique: retries and re-verifications share
// one.
func (s *TransactionService) FindByReference(reference string) (*models.Transaction, error) {
	var trx models.Transaction
	err := s.DB.Where("reference = ?", reference).Order("created_at DESC").First(&trx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// FindByClientSystem lists a client system's transactions, newest first.
func (s *TransactionService) FindByClientSystem(clientSystem string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var rows []models.Transaction
	err := s.DB.Where("client_system = ?", clientSystem).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// StatRow is one (provider, status) bucket of the ledger statistics.
type StatRow struct {
	Provider    string  `gorm:"column:provider" json:"mno_provider"`
	Status      string  `gorm:"column:status" json:"status"`
	Count       int64   `gorm:"column:count" json:"count"`
	TotalAmount float64 `gorm:"column:total_amount" json:"total_amount"`
	AvgAmount   float64 `gorm:"column:avg_amount" json:"avg_amount"`
}

// AggregateStats groups ledger rows by provider and status with counts and
// amount sums. All filters are optional.
func (s *TransactionService) AggregateStats(provider string, from, to *time.Time) ([]StatRow, error) {
	query := s.DB.Table("transactions").
		Select("mno_provider AS provider, status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount, COALESCE(AVG(amount), 0) AS avg_amount")

	if provider != "" {
		query = query.Where("mno_provider = ?", provider)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var rows []StatRow
	err := query.Group("mno_provider, status").Scan(&rows).Error
	return rows, err
}
