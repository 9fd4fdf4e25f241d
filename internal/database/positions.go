package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cryptonova/forecast-service/internal/models"
)

// CreatePosition inserts a new holding and fills in its generated fields
func (db *DB) CreatePosition(p *models.Position) error {
	query := `
		INSERT INTO positions (user_id, symbol, name, amount, purchase_price, purchase_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		p.UserID, p.Symbol, p.Name, p.Amount, p.PurchasePrice, p.PurchaseDate, now, now,
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create position: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetPositionByID retrieves a position by ID
func (db *DB) GetPositionByID(id int) (*models.Position, error) {
	query := `
		SELECT id, user_id, symbol, name, amount, purchase_price, purchase_date, created_at, updated_at
		FROM positions
		WHERE id = $1
	`
	var p models.Position
	err := db.conn.QueryRow(query, id).Scan(
		&p.ID, &p.UserID, &p.Symbol, &p.Name, &p.Amount, &p.PurchasePrice,
		&p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("position %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &p, nil
}

// GetPositionsByUser retrieves all positions for a user, oldest purchase first
func (db *DB) GetPositionsByUser(userID string) ([]*models.Position, error) {
	query := `
		SELECT id, user_id, symbol, name, amount, purchase_price, purchase_date, created_at, updated_at
		FROM positions
		WHERE user_id = $1
		ORDER BY purchase_date ASC, id ASC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Symbol, &p.Name, &p.Amount, &p.PurchasePrice,
			&p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}

	return positions, rows.Err()
}

// UpdatePosition updates an existing holding
func (db *DB) UpdatePosition(p *models.Position) error {
	query := `
		UPDATE positions
		SET symbol = $1, name = $2, amount = $3, purchase_price = $4, purchase_date = $5, updated_at = $6
		WHERE id = $7
	`
	now := time.Now()
	result, err := db.conn.Exec(query,
		p.Symbol, p.Name, p.Amount, p.PurchasePrice, p.PurchaseDate, now, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position %d: %w", p.ID, ErrNotFound)
	}
	p.UpdatedAt = now
	return nil
}

// DeletePosition removes a holding by ID
func (db *DB) DeletePosition(id int) error {
	query := `DELETE FROM positions WHERE id = $1`
	result, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("position %d: %w", id, ErrNotFound)
	}
	return nil
}
