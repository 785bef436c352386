package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

// NoticeRepository handles database operations for notices
type NoticeRepository struct {
	db *pgxpool.Pool
}

// NewNoticeRepository creates a new notice repository
func NewNoticeRepository(db *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{
		db: db,
	}
}

// Create inserts a new notice and sets its generated ID.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	query := `
		INSERT INTO notices (course_id, title, body, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		notice.CourseID, notice.Title, notice.Body, notice.CreatedBy,
	).Scan(&notice.ID, &notice.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating notice: %w", err)
	}

	return nil
}

// GetByID retrieves a notice by ID.
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	query := `
		SELECT id, course_id, title, body, created_by, created_at
		FROM notices
		WHERE id = $1
	`

	var notice models.Notice
	err := r.db.QueryRow(ctx, query, id).Scan(
		&notice.ID,
		&notice.CourseID,
		&notice.Title,
		&notice.Body,
		&notice.CreatedBy,
		&notice.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoticeNotFound
		}
		return nil, fmt.Errorf("error retrieving notice: %w", err)
	}

	return &notice, nil
}

// ListByCourse returns a course's notices, newest first.
func (r *NoticeRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Notice, error) {
	query := `
		SELECT id, course_id, title, body, created_by, created_at
		FROM notices
		WHERE course_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing notices: %w", err)
	}
	defer rows.Close()

	notices := []models.Notice{}
	for rows.Next() {
		var n models.Notice
		err := rows.Scan(&n.ID, &n.CourseID, &n.Title, &n.Body, &n.CreatedBy, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning notice: %w", err)
		}
		notices = append(notices, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notices: %w", err)
	}

	return notices, nil
}

// Update modifies a notice's title and body.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notices SET title = $1, body = $2 WHERE id = $3`,
		notice.Title, notice.Body, notice.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNoticeNotFound
	}
	return nil
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting notice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNoticeNotFound
	}
	return nil
}
