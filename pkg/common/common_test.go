package common

import (
	"strings"
	"testing"
)

func TestGenerateTransactionID(t *testing.T) {
	id := GenerateTransactionID()
	if !strings.HasPrefix(id, "TXN-") {
		t.Errorf("Expected TXN- prefix, got %s", id)
	}
	// "TXN-" + 36-char UUID
	if len(id) != 40 {
		t.Errorf("Expected length 40, got %d", len(id))
	}
	if id == GenerateTransactionID() {
		t.Error("Expected unique ids on successive calls")
	}
}

func TestGenerateProbeID(t *testing.T) {
	id := GenerateProbeID()
	if !strings.HasPrefix(id, "BAL-") {
		t.Errorf("Expected BAL- prefix, got %s", id)
	}
	if len(id) != 40 {
		t.Errorf("Expected length 40, got %d", len(id))
	}
}
