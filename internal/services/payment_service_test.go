package services

import (
	"context"
	"testing"

	"powerpay-gateway/internal/models"

	"github.com/stretchr/testify/assert"
)

// bareProvider has no optional capabilities.
type bareProvider struct {
	name string
}

func (p *bareProvider) Name() string { return p.name }

// fakeProvider implements every capability with canned results.
type fakeProvider struct {
	name        string
	verifyRes   ProviderResult
	payRes      ProviderResult
	queryRes    ProviderResult
	verifyCalls int
	payCalls    int
	queryCalls  int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Verify(ctx context.Context, req VerifyRequest) ProviderResult {
	p.verifyCalls++
	return p.verifyRes
}

func (p *fakeProvider) Pay(ctx context.Context, req PaymentRequest) ProviderResult {
	p.payCalls++
	return p.payRes
}

func (p *fakeProvider) QueryStatus(ctx context.Context, transID string) ProviderResult {
	p.queryCalls++
	return p.queryRes
}

func TestVerifyUnsupportedProvider(t *testing.T) {
	// Provider validation happens before any ledger write, so no DB is
	// needed to observe the rejection.
	svc := NewPaymentService(nil)

	_, err := svc.VerifyPayment(context.Background(), VerifyDTO{
		Reference: "991060011846",
		Provider:  "MPESA",
	})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestProviderNameIsCaseInsensitive(t *testing.T) {
	svc := NewPaymentService(nil, &bareProvider{name: models.ProviderStanbic})

	_, name, err := svc.resolveProvider(" stanbic ")
	assert.NoError(t, err)
	assert.Equal(t, models.ProviderStanbic, name)
}

func TestVerifyUnsupportedOperation(t *testing.T) {
	svc := NewPaymentService(nil, &bareProvider{name: models.ProviderStanbic})

	_, err := svc.VerifyPayment(context.Background(), VerifyDTO{
		Reference: "991060011846",
		Provider:  "STANBIC",
	})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestCashinRequiresCapability(t *testing.T) {
	svc := NewPaymentService(nil, &fakeProvider{name: models.ProviderStanbic})

	_, err := svc.ProcessCashin(context.Background(), PayDTO{
		Reference: "255712345678",
		Amount:    5000,
		Provider:  "STANBIC",
	})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestVerifyPaymentRecordsOutcome(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	provider := &fakeProvider{
		name: models.ProviderSelcom,
		verifyRes: ProviderResult{
			Success: true,
			Status:  models.StatusSuccess,
			Code:    "000",
			Message: "Lookup successful",
			Raw:     []byte(`{"resultcode":"000"}`),
		},
	}
	svc := NewPaymentService(NewTransactionService(testDB), provider)

	res, err := svc.VerifyPayment(context.Background(), VerifyDTO{
		Reference:    "991060011846",
		Provider:     "SELCOM",
		ClientSystem: "BILLING",
	})
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, 1, provider.verifyCalls)

	stored, err := NewTransactionService(testDB).FindByID(res.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, stored.Status)
	assert.Equal(t, "000", stored.ProviderCode)
	assert.Equal(t, models.KindVerification, stored.Kind)
	assert.Equal(t, "BILLING", stored.ClientSystem)
}

func TestProcessPaymentRecordsFailure(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	provider := &fakeProvider{
		name: models.ProviderStanbic,
		payRes: ProviderResult{
			Success: false,
			Status:  models.StatusFailed,
			Code:    "203",
			Message: "Invalid payment reference",
			Raw:     []byte(`{"statusCode":203}`),
		},
	}
	svc := NewPaymentService(NewTransactionService(testDB), provider)

	res, err := svc.ProcessPayment(context.Background(), PayDTO{
		Reference: "991060011846",
		Amount:    25000,
		Provider:  "STANBIC",
	})
	assert.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, models.StatusFailed, res.Status)

	stored, err := NewTransactionService(testDB).FindByID(res.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, "Invalid payment reference", stored.ErrorMessage)
}

func TestQueryTerminalSkipsProviderCall(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	ledger := NewTransactionService(testDB)
	trx := &models.Transaction{
		Reference: "991060011846",
		Provider:  models.ProviderSelcom,
		Kind:      models.KindPayment,
		Status:    models.StatusSuccess,
	}
	assert.NoError(t, ledger.Create(trx))

	provider := &fakeProvider{name: models.ProviderSelcom}
	svc := NewPaymentService(ledger, provider)

	res, err := svc.QueryTransaction(context.Background(), trx.TransactionID)
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, 0, provider.queryCalls)
}

func TestQueryPendingSelcomHitsProvider(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	ledger := NewTransactionService(testDB)
	trx := &models.Transaction{
		Reference: "991060011846",
		Provider:  models.ProviderSelcom,
		Kind:      models.KindPayment,
		Status:    models.StatusProcessing,
	}
	assert.NoError(t, ledger.Create(trx))

	provider := &fakeProvider{
		name: models.ProviderSelcom,
		queryRes: ProviderResult{
			Success: false,
			Status:  models.StatusProcessing,
			Code:    "927",
			Message: "Transaction pending confirmation",
		},
	}
	svc := NewPaymentService(ledger, provider)

	res, err := svc.QueryTransaction(context.Background(), trx.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, 1, provider.queryCalls)
	assert.Equal(t, models.StatusProcessing, res.Status)

	stored, err := ledger.FindByID(trx.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, stored.Status)
}

func TestQueryResolvesTimedOutTransaction(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	ledger := NewTransactionService(testDB)
	trx := &models.Transaction{
		Reference: "991060011846",
		Provider:  models.ProviderSelcom,
		Kind:      models.KindPayment,
		Status:    models.StatusTimeout,
	}
	assert.NoError(t, ledger.Create(trx))

	provider := &fakeProvider{
		name: models.ProviderSelcom,
		queryRes: ProviderResult{
			Success: true,
			Status:  models.StatusSuccess,
			Code:    "000",
			Message: "Completed",
			Receipt: "RCPT-99",
		},
	}
	svc := NewPaymentService(ledger, provider)

	res, err := svc.QueryTransaction(context.Background(), trx.TransactionID)
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, "RCPT-99", res.Receipt)

	stored, err := ledger.FindByID(trx.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, stored.Status)
}

func TestQueryTransportFailureLeavesLedgerAlone(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	ledger := NewTransactionService(testDB)
	trx := &models.Transaction{
		Reference: "991060011846",
		Provider:  models.ProviderSelcom,
		Kind:      models.KindPayment,
		Status:    models.StatusProcessing,
	}
	assert.NoError(t, ledger.Create(trx))

	provider := &fakeProvider{
		name: models.ProviderSelcom,
		queryRes: ProviderResult{
			Success:   false,
			Status:    models.StatusTimeout,
			Code:      SelcomTransportCode,
			Message:   "connection refused",
			Transport: true,
		},
	}
	svc := NewPaymentService(ledger, provider)

	_, err := svc.QueryTransaction(context.Background(), trx.TransactionID)
	assert.NoError(t, err)

	stored, err := ledger.FindByID(trx.TransactionID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, stored.Status)
}
