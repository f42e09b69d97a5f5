package database

import (
	"context"
	"database/sql"
	"fmt"

	"footagelens/internal/models"
)

type FootageRepository struct {
	db *DB
}

func NewFootageRepository(db *DB) *FootageRepository {
	return &FootageRepository{db: db}
}

func (r *FootageRepository) InsertFootage(ctx context.Context, footage *models.Footage) error {
	var query string
	if r.db.dbType == "postgres" {
		query = `INSERT INTO footages (id, email, name, label, analysis, upload_date)
			VALUES ($1, $2, $3, $4, $5, $6)`
	} else {
		query = `INSERT INTO footages (id, email, name, label, analysis, upload_date)
			VALUES (?, ?, ?, ?, ?, ?)`
	}

	_, err := r.db.conn.ExecContext(ctx, query,
		footage.ID, footage.Email, footage.Name, footage.Label, footage.Analysis, footage.UploadDate)
	if err != nil {
		return fmt.Errorf("failed to insert footage: %w", err)
	}
	return nil
}

func (r *FootageRepository) GetFootageByID(ctx context.Context, id string) (*models.Footage, error) {
	var query string
	if r.db.dbType == "postgres" {
		query = `SELECT id, email, name, label, analysis, upload_date FROM footages WHERE id = $1`
	} else {
		query = `SELECT id, email, name, label, analysis, upload_date FROM footages WHERE id = ?`
	}

	var f models.Footage
	err := r.db.conn.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.Email, &f.Name, &f.Label, &f.Analysis, &f.UploadDate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("footage not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get footage: %w", err)
	}
	return &f, nil
}

// ListFootagesByEmail returns every footage owned by email, newest first.
func (r *FootageRepository) ListFootagesByEmail(ctx context.Context, email string) ([]models.Footage, error) {
	var query string
	if r.db.dbType == "postgres" {
		query = `SELECT id, email, name, label, analysis, upload_date FROM footages
			WHERE email = $1 ORDER BY upload_date DESC`
	} else {
		query = `SELECT id, email, name, label, analysis, upload_date FROM footages
			WHERE email = ? ORDER BY upload_date DESC`
	}

	rows, err := r.db.conn.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list footages: %w", err)
	}
	defer rows.Close()

	footages := []models.Footage{}
	for rows.Next() {
		var f models.Footage
		if err := rows.Scan(&f.ID, &f.Email, &f.Name, &f.Label, &f.Analysis, &f.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan footage: %w", err)
		}
		footages = append(footages, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read footages: %w", err)
	}
	return footages, nil
}
