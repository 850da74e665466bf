package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "no shared tokens",
			a:    "GROCERY STORE",
			b:    "FUEL STATION",
			want: 0,
		},
		{
			name: "empty descriptions",
			a:    "",
			b:    "",
			want: 0,
		},
		{
			name: "identical descriptions",
			a:    "monthly rent",
			b:    "monthly rent",
			want: 1.0,
		},
		{
			name: "partial token overlap",
			a:    "acme power bill",
			b:    "acme water bill",
			want: 0.5, // 2 shared of 4 distinct tokens
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DescriptionSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDescriptionSimilarity_TransferBonus(t *testing.T) {
	// One side mentioning a transfer keyword adds 0.3 even with no overlap.
	score := DescriptionSimilarity("TRANSFER TO 1234", "RECEIVED 1234")
	base := jaccard(tokenSet("TRANSFER TO 1234"), tokenSet("RECEIVED 1234"))
	assert.InDelta(t, base+0.3, score, 1e-9)
}

func TestDescriptionSimilarity_AccountTypeBonus(t *testing.T) {
	// Both sides naming the same account type adds 0.2; only one side
	// naming it does not.
	withBonus := DescriptionSimilarity("to savings acct", "from savings acct")
	oneSided := DescriptionSimilarity("to savings acct", "from cash acct")
	assert.Greater(t, withBonus, oneSided)
}

func TestDescriptionSimilarity_CappedAtOne(t *testing.T) {
	// Identical transfer-flavored descriptions would exceed 1.0 with bonuses.
	score := DescriptionSimilarity("transfer savings", "transfer savings")
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, EditDistance("acme", "acme"))
	assert.Equal(t, 1, EditDistance("acme", "acm"))
	assert.Equal(t, 4, EditDistance("", "acme"))
}
