package common

import (
	"github.com/google/uuid"
)

// GenerateTransactionID returns a fresh "TXN-"-prefixed transaction id.
func GenerateTransactionID() string {
	return "TXN-" + uuid.New().String()
}

// GenerateProbeID returns a "BAL-"-prefixed id used for balance probes.
func GenerateProbeID() string {
	return "BAL-" + uuid.New().String()
}
