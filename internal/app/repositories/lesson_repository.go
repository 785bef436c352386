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

// LessonRepository handles database operations for lessons
type LessonRepository struct {
	db *pgxpool.Pool
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{
		db: db,
	}
}

// Create inserts a new lesson and sets its generated ID.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (course_id, title, content, attachment_path, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		lesson.CourseID, lesson.Title, lesson.Content, lesson.AttachmentPath, lesson.CreatedBy,
	).Scan(&lesson.ID, &lesson.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating lesson: %w", err)
	}

	return nil
}

// GetByID retrieves a lesson by ID.
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, attachment_path, created_by, created_at
		FROM lessons
		WHERE id = $1
	`

	var lesson models.Lesson
	err := r.db.QueryRow(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.Content,
		&lesson.AttachmentPath,
		&lesson.CreatedBy,
		&lesson.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLessonNotFound
		}
		return nil, fmt.Errorf("error retrieving lesson: %w", err)
	}

	return &lesson, nil
}

// ListByCourse returns a course's lessons in creation order.
func (r *LessonRepository) ListByCourse(ctx context.Context, courseID int64) ([]models.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, attachment_path, created_by, created_at
		FROM lessons
		WHERE course_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var l models.Lesson
		err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.AttachmentPath, &l.CreatedBy, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}

	return lessons, nil
}

// Update modifies a lesson's title, content and attachment path.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE lessons SET title = $1, content = $2, attachment_path = $3 WHERE id = $4`,
		lesson.Title, lesson.Content, lesson.AttachmentPath, lesson.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLessonNotFound
	}
	return nil
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLessonNotFound
	}
	return nil
}
