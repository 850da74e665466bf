package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digaomatias/mymascada/internal/common"
	"github.com/digaomatias/mymascada/internal/model"
)

func mockCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Dining"},
		{ID: 3, Name: "Transport"},
	}
}

func TestMockClient(t *testing.T) {
	inputs := []TransactionInput{
		{ID: "t1", Description: "ACME MARKET", Amount: -30, Date: time.Now()},
		{ID: "t2", Description: "CITY CABS", Amount: -12, Date: time.Now()},
	}

	resp, err := NewMockClient().SuggestCategories(context.Background(), inputs, mockCategories())
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	for _, result := range resp.Results {
		require.Len(t, result.Suggestions, SuggestionsPerTransaction)
		assert.InDelta(t, 0.9, result.Suggestions[0].Confidence, 1e-9)
		assert.Greater(t, result.Suggestions[0].Confidence, result.Suggestions[1].Confidence)
		assert.Greater(t, result.Suggestions[1].Confidence, result.Suggestions[2].Confidence)
	}

	assert.Equal(t, 2, resp.Summary.HighConfidence)
}

func TestMockClient_TooFewCategories(t *testing.T) {
	_, err := NewMockClient().SuggestCategories(context.Background(),
		[]TransactionInput{{ID: "t1"}},
		[]model.Category{{ID: 1, Name: "Only"}})
	require.Error(t, err)

	var reqErr *RequestError
	assert.True(t, errors.As(err, &reqErr))
}

func TestMockClient_PropagatesConfiguredError(t *testing.T) {
	sentinel := errors.New("provider offline")
	client := &MockClient{Err: sentinel}

	_, err := client.SuggestCategories(context.Background(),
		[]TransactionInput{{ID: "t1"}}, mockCategories())
	assert.ErrorIs(t, err, sentinel)
}

func TestMockClient_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockClient().SuggestCategories(ctx,
		[]TransactionInput{{ID: "t1"}}, mockCategories())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildCandidates(t *testing.T) {
	resp, err := NewMockClient().SuggestCategories(context.Background(),
		[]TransactionInput{{ID: "t1"}}, mockCategories())
	require.NoError(t, err)

	counter := 0
	newID := func() string {
		counter++
		return "cand-" + string(rune('0'+counter))
	}

	candidates := BuildCandidates(resp, "user-1", newID)
	require.Len(t, candidates, SuggestionsPerTransaction)

	for _, c := range candidates {
		assert.Equal(t, "t1", c.TransactionID)
		assert.Equal(t, model.MethodLLM, c.Method)
		assert.Equal(t, model.CandidatePending, c.Status)
		assert.Equal(t, "user-1", c.ProcessedBy)
		assert.NotEmpty(t, c.ID)
		assert.False(t, c.CreatedAt.IsZero())
	}
}

func TestNewClientFactory(t *testing.T) {
	client, err := NewClient(Config{Provider: "mock"})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, client)

	_, err = NewClient(Config{Provider: "carrier-pigeon"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = NewClient(Config{Provider: "openai"})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
