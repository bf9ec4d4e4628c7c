package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"powerpay-gateway/internal/services"
	"powerpay-gateway/pkg/common"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	Payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

type VerifyRequest struct {
	Reference       string `json:"reference" binding:"required"`
	Provider        string `json:"mno_provider" binding:"required"`
	ClientSystem    string `json:"client_system"`
	ClientReference string `json:"client_reference"`
	UtilityCode     string `json:"utility_code"`
}

type PayRequest struct {
	Reference       string  `json:"reference" binding:"required"`
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	Provider        string  `json:"mno_provider" binding:"required"`
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

// Verify relays a biller/utility verification.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Payments.VerifyPayment(c.Request.Context(), services.VerifyDTO{
		Reference:       req.Reference,
		Provider:        req.Provider,
		ClientSystem:    req.ClientSystem,
		ClientReference: req.ClientReference,
		UtilityCode:     req.UtilityCode,
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(resultStatus(res.Success), res)
}

// Pay relays a payment posting.
func (h *PaymentHandler) Pay(c *gin.Context) {
	h.post(c, false)
}

// Cashin relays a wallet cash-in.
func (h *PaymentHandler) Cashin(c *gin.Context) {
	h.post(c, true)
}

func (h *PaymentHandler) post(c *gin.Context, cashin bool) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dto := services.PayDTO{
		Reference:       req.Reference,
		Amount:          req.Amount,
		Provider:        req.Provider,
		ClientSystem:    req.ClientSystem,
		ClientReference: req.ClientReference,
		PayerName:       req.PayerName,
		PayerPhone:      req.PayerPhone,
		PayerEmail:      req.PayerEmail,
		AccountID:       req.AccountID,
		PaymentDesc:     req.PaymentDesc,
		Channel:         req.Channel,
		Currency:        req.Currency,
		AmountType:      req.AmountType,
		AccOpt:          req.AccOpt,
		UtilityCode:     req.UtilityCode,
	}

	var res *services.PaymentResponse
	var err error
	if cashin {
		res, err = h.Payments.ProcessCashin(c.Request.Context(), dto)
	} else {
		res, err = h.Payments.ProcessPayment(c.Request.Context(), dto)
	}
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(resultStatus(res.Success), res)
}

// Query reconciles a transaction's status.
func (h *PaymentHandler) Query(c *gin.Context) {
	transactionID := c.Param("transaction_id")

	res, err := h.Payments.QueryTransaction(c.Request.Context(), transactionID)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// History lists a client system's transactions.
func (h *PaymentHandler) History(c *gin.Context) {
	clientSystem := c.Param("client_system")
	if clientSystem == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_system is required"})
		return
	}

	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)

	rows, err := h.Payments.History(clientSystem, limit, offset)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(rows, "Transactions retrieved"))
}

// Balance probes the Selcom vendor float.
func (h *PaymentHandler) Balance(c *gin.Context) {
	res, err := h.Payments.GetBalance(c.Request.Context())
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(resultStatus(res.Success), res)
}

// Stats aggregates ledger rows by provider and status. Optional filters:
// mno_provider, from, to (RFC 3339 or date-only).
func (h *PaymentHandler) Stats(c *gin.Context) {
	from, err := timeQuery(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}

	rows, err := h.Payments.Stats(c.Query("mno_provider"), from, to)
	if err != nil {
		abortServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(rows, "Stats retrieved"))
}

func resultStatus(success bool) int {
	if success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

// abortServiceError maps service sentinels to HTTP statuses.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedProvider),
		errors.Is(err, services.ErrUnsupportedOperation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, services.ErrDuplicateTransaction):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate transaction"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func timeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unparseable time")
}
