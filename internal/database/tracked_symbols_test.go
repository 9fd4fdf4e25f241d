package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptonova/forecast-service/internal/models"
)

func TestTrackedSymbolsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("TrackSymbol creates new tracked symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		s := &models.TrackedSymbol{Symbol: "BTC", CoingeckoID: "bitcoin"}
		err := testDB.TrackSymbol(s)
		require.NoError(t, err)
		assert.NotZero(t, s.ID)
		assert.True(t, s.Active)
	})

	t.Run("TrackSymbol reactivates an untracked symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		s := &models.TrackedSymbol{Symbol: "ETH", CoingeckoID: "ethereum"}
		require.NoError(t, testDB.TrackSymbol(s))
		require.NoError(t, testDB.UntrackSymbol("ETH"))

		again := &models.TrackedSymbol{Symbol: "ETH", CoingeckoID: "ethereum"}
		require.NoError(t, testDB.TrackSymbol(again))
		assert.Equal(t, s.ID, again.ID)

		retrieved, err := testDB.GetTrackedSymbol("ETH")
		require.NoError(t, err)
		assert.True(t, retrieved.Active)
	})

	t.Run("UntrackSymbol deactivates symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		s := &models.TrackedSymbol{Symbol: "SOL", CoingeckoID: "solana"}
		require.NoError(t, testDB.TrackSymbol(s))

		err := testDB.UntrackSymbol("SOL")
		require.NoError(t, err)

		retrieved, err := testDB.GetTrackedSymbol("SOL")
		require.NoError(t, err)
		assert.False(t, retrieved.Active)
	})

	t.Run("UntrackSymbol returns ErrNotFound for unknown symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		err := testDB.UntrackSymbol("NOPE")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("UntrackSymbol returns ErrNotFound when already inactive", func(t *testing.T) {
		testDB.TruncateAll(t)

		s := &models.TrackedSymbol{Symbol: "ADA", CoingeckoID: "cardano"}
		require.NoError(t, testDB.TrackSymbol(s))
		require.NoError(t, testDB.UntrackSymbol("ADA"))

		err := testDB.UntrackSymbol("ADA")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("GetTrackedSymbols returns only active symbols ordered by ticker", func(t *testing.T) {
		testDB.TruncateAll(t)

		for _, s := range []*models.TrackedSymbol{
			{Symbol: "SOL", CoingeckoID: "solana"},
			{Symbol: "BTC", CoingeckoID: "bitcoin"},
			{Symbol: "ETH", CoingeckoID: "ethereum"},
		} {
			require.NoError(t, testDB.TrackSymbol(s))
		}
		require.NoError(t, testDB.UntrackSymbol("ETH"))

		symbols, err := testDB.GetTrackedSymbols()
		require.NoError(t, err)
		require.Len(t, symbols, 2)
		assert.Equal(t, "BTC", symbols[0].Symbol)
		assert.Equal(t, "SOL", symbols[1].Symbol)
	})

	t.Run("GetTrackedSymbol returns ErrNotFound for unknown symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.GetTrackedSymbol("NOPE")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
