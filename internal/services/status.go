package services

import (
	"powerpay-gateway/internal/models"
)

// SelcomTransportCode is the reserved result code recorded when a Selcom call
// fails at the transport layer, before any provider response. Mapping it to
// TIMEOUT (rather than FAILED) is a deliberate decision: the payment may
// still have gone through and a later status query can settle it.
const SelcomTransportCode = "999"

// SelcomStatus maps a Selcom result code to a canonical status. The mapping
// is total: any code not listed is FAILED.
func SelcomStatus(resultcode string) string {
	switch resultcode {
	case "000":
		return models.StatusSuccess
	case "111", "927":
		return models.StatusProcessing
	case "999":
		return models.StatusTimeout
	default:
		return models.StatusFailed
	}
}

// StanbicStatus maps a Stanbic status code to a canonical status. Stanbic has
// no asynchronous states: 200 is SUCCESS, everything else is FAILED.
func StanbicStatus(statusCode int) string {
	if statusCode == 200 {
		return models.StatusSuccess
	}
	return models.StatusFailed
}

// stanbicErrorMessages maps the documented Stanbic error codes to their
// human-readable meanings.
var stanbicErrorMessages = map[int]string{
	201: "Invalid token",
	202: "Invalid checksum",
	203: "Invalid payment reference",
	204: "Payment reference has expired",
	205: "Duplicate transaction",
	206: "Transaction reference already paid (verification)",
	207: "Transaction reference already paid (posting)",
}

// StanbicErrorMessage returns the human-readable message for a Stanbic status
// code, or a generic message for unknown codes.
func StanbicErrorMessage(statusCode int) string {
	if msg, ok := stanbicErrorMessages[statusCode]; ok {
		return msg
	}
	return "Unknown error occurred"
}
