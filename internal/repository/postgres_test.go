package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carvalue/internal/model"
)

// Runs against a real database when TEST_DATABASE_URL is set.
func TestPostgresRepository_LogAndList(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	repo, err := NewPostgresRepository(dsn, 2, 1)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	info := "single owner"
	rec := &model.ValuationRecord{
		Source:         "form",
		Make:           "Toyota",
		Model:          "Innova",
		Year:           "2020",
		Mileage:        "50000",
		Condition:      "good",
		AdditionalInfo: &info,
		Provider:       "heuristic",
		Succeeded:      true,
		Valuation:      "## Estimated value",
		ResponseTimeMs: 3,
	}
	require.NoError(t, repo.LogValuation(ctx, rec))

	records, err := repo.RecentValuations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Innova", records[0].Model)
	require.NotNil(t, records[0].AdditionalInfo)
	assert.Equal(t, info, *records[0].AdditionalInfo)
	assert.False(t, records[0].CreatedAt.IsZero())
}
