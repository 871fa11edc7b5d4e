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

const recordingColumns = `id, sequence, tune_id, user_id, name, notes, url, rating, sort_order, created_at, updated_at, deleted_at`

// RecordingRepository implements [models.Repository] for [models.Recording] persistence.
//
// Recordings are listed in ascending sort order with insertion sequence breaking ties.
type RecordingRepository struct {
	db *sql.DB
}

// NewRecordingRepository creates a new [RecordingRepository] with the given database connection
func NewRecordingRepository(db *sql.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

// Create inserts a recording under a live tune owned by the same user.
//
// A recording without a sort order is placed one past the current highest sort order of its tune.
func (r *RecordingRepository) Create(ctx context.Context, rec *models.Recording) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM tunes WHERE id = ? AND deleted_at IS NULL`, rec.TuneID()).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != rec.UserID()) {
		return fmt.Errorf("%w: %s", shared.ErrTuneNotFound, rec.TuneID())
	}
	if err != nil {
		return fmt.Errorf("failed to query parent tune: %w", err)
	}

	if !rec.HasSortOrder() {
		var next int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM recordings WHERE tune_id = ? AND deleted_at IS NULL`,
			rec.TuneID(),
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to compute sort order: %w", err)
		}
		rec.SetSortOrder(next)
	}

	sequence, err := nextSequenceTx(ctx, tx, "recordings")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO recordings (id, sequence, tune_id, user_id, name, notes, url, rating, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id,
		sequence,
		rec.TuneID(),
		rec.UserID(),
		rec.Name(),
		rec.Notes(),
		nullString(rec.URL()),
		nullInt(rec.Rating()),
		rec.SortOrder(),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recording: %w", err)
	}

	rec.SetID(id)
	rec.SetSequence(sequence)
	return nil
}

// Get retrieves a recording by ID, excluding soft-deleted recordings
func (r *RecordingRepository) Get(ctx context.Context, id string) (*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = ? AND deleted_at IS NULL`

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordingNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recording: %w", err)
	}
	return rec, nil
}

// GetForUser retrieves a recording only when userID owns it.
func (r *RecordingRepository) GetForUser(ctx context.Context, userID, id string) (*models.Recording, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordingNotFound, id)
	}
	return rec, nil
}

// Update writes name, notes, url, rating and sort order of a recording its owner still has
func (r *RecordingRepository) Update(ctx context.Context, rec *models.Recording) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	query := `
		UPDATE recordings
		SET name = ?, notes = ?, url = ?, rating = ?, sort_order = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.Name(), rec.Notes(), nullString(rec.URL()), nullInt(rec.Rating()), rec.SortOrder(), now, rec.ID(), rec.UserID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update recording: %w", err)
	}

	if err := checkAffected(result, fmt.Errorf("%w: %s", shared.ErrRecordingNotFound, rec.ID())); err != nil {
		return err
	}

	rec.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a recording by ID
func (r *RecordingRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id, "")
}

// DeleteForUser soft-deletes a recording owned by userID
func (r *RecordingRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	if userID == "" {
		return shared.ErrNotAuthenticated
	}
	return r.delete(ctx, id, userID)
}

func (r *RecordingRepository) delete(ctx context.Context, id, userID string) error {
	query := `UPDATE recordings SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`
	args := []any{time.Now(), id}
	if userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}

	return checkAffected(result, fmt.Errorf("%w: %s", shared.ErrRecordingNotFound, id))
}

// List retrieves recordings matching the given criteria, excluding soft-deleted recordings.
//
// Supported criteria: "tune_id", "user_id".
func (r *RecordingRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE deleted_at IS NULL`
	args := []any{}

	if tuneID, ok := criteria["tune_id"].(string); ok && tuneID != "" {
		query += " AND tune_id = ?"
		args = append(args, tuneID)
	}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sort_order ASC, sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	recordings := []*models.Recording{}
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		recordings = append(recordings, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return recordings, nil
}

// ListByTune retrieves the live recordings of a tune owned by userID in display order
func (r *RecordingRepository) ListByTune(ctx context.Context, userID, tuneID string) ([]*models.Recording, error) {
	if userID == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return r.List(ctx, map[string]any{"tune_id": tuneID, "user_id": userID})
}

func scanRecording(row scanner) (*models.Recording, error) {
	var (
		id        string
		sequence  int
		tuneID    string
		userID    string
		name      string
		notes     string
		url       sql.NullString
		rating    sql.NullInt64
		sortOrder int
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &tuneID, &userID, &name, &notes, &url, &rating, &sortOrder, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	rec := models.NewRecording(tuneID, userID, name)
	rec.SetID(id)
	rec.SetSequence(sequence)
	rec.SetNotes(notes)
	if url.Valid {
		rec.SetURL(url.String)
	}
	if rating.Valid {
		v := int(rating.Int64)
		rec.SetRating(&v)
	}
	rec.SetSortOrder(sortOrder)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		rec.SetDeletedAt(&deletedAt.Time)
	}
	return rec, nil
}
