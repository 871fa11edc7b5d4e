package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunebook/internal/models"
	"github.com/desertthunder/tunebook/internal/shared"
)

const tuneColumns = `id, sequence, user_id, name, composer, year, notes, created_at, updated_at, deleted_at`

// TuneRepository implements [models.Repository] for [models.Tune] persistence.
type TuneRepository struct {
	db *sql.DB
}

// NewTuneRepository creates a new [TuneRepository] with the given database connection
func NewTuneRepository(db *sql.DB) *TuneRepository {
	return &TuneRepository{db: db}
}

// Create inserts a new tune with generated ID and sequence
func (r *TuneRepository) Create(ctx context.Context, tune *models.Tune) error {
	if err := tune.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequenceTx(ctx, tx, "tunes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO tunes (id, sequence, user_id, name, composer, year, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id,
		sequence,
		tune.UserID(),
		tune.Name(),
		tune.Composer(),
		nullString(tune.Year()),
		tune.Notes(),
		tune.CreatedAt(),
		tune.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tune: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tune: %w", err)
	}

	tune.SetID(id)
	tune.SetSequence(sequence)
	return nil
}

// Get retrieves a tune by ID, excluding soft-deleted tunes
func (r *TuneRepository) Get(ctx context.Context, id string) (*models.Tune, error) {
	query := `SELECT ` + tuneColumns + ` FROM tunes WHERE id = ? AND deleted_at IS NULL`

	tune, err := scanTune(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTuneNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tune: %w", err)
	}
	return tune, nil
}

// GetForUser retrieves a tune only when userID owns it. Tunes owned by someone else are reported as not found.
func (r *TuneRepository) GetForUser(ctx context.Context, userID, id string) (*models.Tune, error) {
	tune, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tune.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTuneNotFound, id)
	}
	return tune, nil
}

// Update writes the mutable fields (name, composer, year, notes) of a tune its owner still has
func (r *TuneRepository) Update(ctx context.Context, tune *models.Tune) error {
	if err := tune.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	query := `
		UPDATE tunes
		SET name = ?, composer = ?, year = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		tune.Name(), tune.Composer(), nullString(tune.Year()), tune.Notes(), now, tune.ID(), tune.UserID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update tune: %w", err)
	}

	if err := checkAffected(result, fmt.Errorf("%w: %s", shared.ErrTuneNotFound, tune.ID())); err != nil {
		return err
	}

	tune.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a tune and its recordings by ID
func (r *TuneRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id, "")
}

// DeleteForUser soft-deletes a tune owned by userID together with its recordings
func (r *TuneRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	if userID == "" {
		return shared.ErrNotAuthenticated
	}
	return r.delete(ctx, id, userID)
}

func (r *TuneRepository) delete(ctx context.Context, id, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := `UPDATE tunes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
	args := []any{now, id}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete tune: %w", err)
	}
	if err := checkAffected(result, fmt.Errorf("%w: %s", shared.ErrTuneNotFound, id)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE recordings SET deleted_at = ? WHERE tune_id = ? AND deleted_at IS NULL`, now, id,
	); err != nil {
		return fmt.Errorf("failed to delete tune recordings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tune delete: %w", err)
	}
	return nil
}

// List retrieves all tunes matching the given criteria in insertion order, excluding soft-deleted tunes.
//
// Supported criteria: "user_id".
func (r *TuneRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Tune, error) {
	query := `SELECT ` + tuneColumns + ` FROM tunes WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tunes: %w", err)
	}
	defer rows.Close()

	tunes := []*models.Tune{}
	for rows.Next() {
		tune, err := scanTune(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tune: %w", err)
		}
		tunes = append(tunes, tune)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tunes, nil
}

// ListByUser retrieves every live tune owned by userID
func (r *TuneRepository) ListByUser(ctx context.Context, userID string) ([]*models.Tune, error) {
	if userID == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return r.List(ctx, map[string]any{"user_id": userID})
}

func scanTune(row scanner) (*models.Tune, error) {
	var (
		id        string
		sequence  int
		userID    string
		name      string
		composer  string
		year      sql.NullString
		notes     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &userID, &name, &composer, &year, &notes, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	tune := models.NewTune(userID, name)
	tune.SetID(id)
	tune.SetSequence(sequence)
	tune.SetComposer(composer)
	if year.Valid {
		tune.SetYear(year.String)
	}
	tune.SetNotes(notes)
	tune.SetCreatedAt(createdAt)
	tune.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		tune.SetDeletedAt(&deletedAt.Time)
	}
	return tune, nil
}
