package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBankReference(t *testing.T) {
	ref := BankReference{ExternalID: "FIT123", BankCategory: "GROCERY", Amount: -42.50}
	payload, err := ref.Marshal()
	require.NoError(t, err)

	parsed, err := ParseBankReference(payload)
	require.NoError(t, err)
	assert.Equal(t, &ref, parsed)
}

func TestParseBankReference_Errors(t *testing.T) {
	_, err := ParseBankReference("")
	assert.Error(t, err)

	_, err = ParseBankReference("{truncated")
	assert.Error(t, err)
}
