package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptonova/forecast-service/internal/models"
)

// UpsertPricePoint stores a single price observation for a symbol
func (db *DB) UpsertPricePoint(symbol string, point models.PricePoint) error {
	query := `
		INSERT INTO price_history (symbol, ts, price, volume, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, ts) DO UPDATE SET
			price = EXCLUDED.price,
			volume = EXCLUDED.volume
	`
	_, err := db.conn.Exec(query,
		symbol, point.Timestamp,
		decimal.NewFromFloat(point.Price), decimal.NewFromFloat(point.Volume),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price point for %s: %w", symbol, err)
	}
	return nil
}

// UpsertPricePoints stores a batch of price observations efficiently
func (db *DB) UpsertPricePoints(symbol string, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_history (symbol, ts, price, volume, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, ts) DO UPDATE SET
			price = EXCLUDED.price,
			volume = EXCLUDED.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range points {
		_, err := stmt.Exec(symbol, p.Timestamp,
			decimal.NewFromFloat(p.Price), decimal.NewFromFloat(p.Volume), now)
		if err != nil {
			return fmt.Errorf("failed to insert price point for %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPriceHistory retrieves up to days of history for a symbol, oldest first
func (db *DB) GetPriceHistory(symbol string, days int) ([]models.PricePoint, error) {
	query := `
		SELECT ts, price, volume
		FROM price_history
		WHERE symbol = $1 AND ts >= $2
		ORDER BY ts ASC
	`
	cutoff := time.Now().AddDate(0, 0, -days)

	rows, err := db.conn.Query(query, symbol, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var ts time.Time
		var price, volume decimal.Decimal

		if err := rows.Scan(&ts, &price, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}

		points = append(points, models.PricePoint{
			Timestamp: ts,
			Price:     price.InexactFloat64(),
			Volume:    volume.InexactFloat64(),
		})
	}

	return points, rows.Err()
}

// GetPriceRecords retrieves full stored records for a symbol, newest first
func (db *DB) GetPriceRecords(symbol string, limit int) ([]*models.PriceRecord, error) {
	query := `
		SELECT id, symbol, ts, price, volume, created_at
		FROM price_history
		WHERE symbol = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price records: %w", err)
	}
	defer rows.Close()

	var records []*models.PriceRecord
	for rows.Next() {
		var r models.PriceRecord
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Ts, &r.Price, &r.Volume, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		records = append(records, &r)
	}

	return records, rows.Err()
}

// DeletePriceHistoryOlderThan removes observations older than the cutoff,
// returning the number of rows deleted
func (db *DB) DeletePriceHistoryOlderThan(cutoff time.Time) (int64, error) {
	query := `DELETE FROM price_history WHERE ts < $1`
	result, err := db.conn.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price history: %w", err)
	}
	return result.RowsAffected()
}
