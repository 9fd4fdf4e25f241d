package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cryptonova/forecast-service/internal/models"
)

// TrackSymbol adds a symbol to the sync watchlist, reactivating it if it
// was previously untracked
func (db *DB) TrackSymbol(s *models.TrackedSymbol) error {
	query := `
		INSERT INTO tracked_symbols (symbol, coingecko_id, active, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET
			coingecko_id = EXCLUDED.coingecko_id,
			active = TRUE,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query, s.Symbol, s.CoingeckoID, now, now).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to track symbol %s: %w", s.Symbol, err)
	}
	s.Active = true
	s.UpdatedAt = now
	return nil
}

// UntrackSymbol deactivates a symbol without deleting its price history
func (db *DB) UntrackSymbol(symbol string) error {
	query := `
		UPDATE tracked_symbols
		SET active = FALSE, updated_at = $1
		WHERE symbol = $2 AND active = TRUE
	`
	result, err := db.conn.Exec(query, time.Now(), symbol)
	if err != nil {
		return fmt.Errorf("failed to untrack symbol %s: %w", symbol, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("tracked symbol %s: %w", symbol, ErrNotFound)
	}
	return nil
}

// GetTrackedSymbol retrieves one tracked symbol by its ticker
func (db *DB) GetTrackedSymbol(symbol string) (*models.TrackedSymbol, error) {
	query := `
		SELECT id, symbol, coingecko_id, active, created_at, updated_at
		FROM tracked_symbols
		WHERE symbol = $1
	`
	var s models.TrackedSymbol
	err := db.conn.QueryRow(query, symbol).Scan(
		&s.ID, &s.Symbol, &s.CoingeckoID, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tracked symbol %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked symbol: %w", err)
	}
	return &s, nil
}

// GetTrackedSymbols retrieves all active symbols ordered by ticker
func (db *DB) GetTrackedSymbols() ([]*models.TrackedSymbol, error) {
	query := `
		SELECT id, symbol, coingecko_id, active, created_at, updated_at
		FROM tracked_symbols
		WHERE active = TRUE
		ORDER BY symbol ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked symbols: %w", err)
	}
	defer rows.Close()

	var symbols []*models.TrackedSymbol
	for rows.Next() {
		var s models.TrackedSymbol
		err := rows.Scan(&s.ID, &s.Symbol, &s.CoingeckoID, &s.Active, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked symbol: %w", err)
		}
		symbols = append(symbols, &s)
	}

	return symbols, rows.Err()
}
