package services

import (
	"testing"

	"powerpay-gateway/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSelcomStatus(t *testing.T) {
	cases := map[string]string{
		"000": models.StatusSuccess,
		"111": models.StatusProcessing,
		"927": models.StatusProcessing,
		"999": models.StatusTimeout,
		"403": models.StatusFailed,
		"500": models.StatusFailed,
		"":    models.StatusFailed,
		"abc": models.StatusFailed,
	}
	for code, want := range cases {
		assert.Equal(t, want, SelcomStatus(code), "resultcode %q", code)
	}
}

func TestStanbicStatus(t *testing.T) {
	assert.Equal(t, models.StatusSuccess, StanbicStatus(200))
	for _, code := range []int{0, 201, 202, 203, 204, 205, 206, 207, 400, 500} {
		assert.Equal(t, models.StatusFailed, StanbicStatus(code), "statusCode %d", code)
	}
}

func TestStanbicErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid token", StanbicErrorMessage(201))
	assert.Equal(t, "Invalid checksum", StanbicErrorMessage(202))
	assert.Equal(t, "Invalid payment reference", StanbicErrorMessage(203))
	assert.Equal(t, "Payment reference has expired", StanbicErrorMessage(204))
	assert.Equal(t, "Duplicate transaction", StanbicErrorMessage(205))
	assert.Equal(t, "Transaction reference already paid (verification)", StanbicErrorMessage(206))
	assert.Equal(t, "Transaction reference already paid (posting)", StanbicErrorMessage(207))
	assert.Equal(t, "Unknown error occurred", StanbicErrorMessage(999))
}
