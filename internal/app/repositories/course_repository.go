package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/dberrors"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

// Create inserts a new course and lists the creator as its first instructor,
// in a single transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO courses (title, description, code, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, query, course.Title, course.Description, course.Code, course.CreatedBy).
		Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCourseCodeExists
		}
		return fmt.Errorf("error creating course: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO course_instructors (course_id, user_id) VALUES ($1, $2)`,
		course.ID, course.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("error listing creator as instructor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing course creation: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID with the owner's name joined in.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := `
		SELECT c.id, c.title, c.description, c.code, c.created_by, c.created_at, u.name
		FROM courses c
		JOIN users u ON u.id = c.created_by
		WHERE c.id = $1
	`

	var course models.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Code,
		&course.CreatedBy,
		&course.CreatedAt,
		&course.OwnerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return &course, nil
}

// List returns a page of courses ordered by creation time, newest first,
// along with the total count.
func (r *CourseRepository) List(ctx context.Context, offset, limit int) ([]models.Course, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	query := `
		SELECT c.id, c.title, c.description, c.code, c.created_by, c.created_at, u.name
		FROM courses c
		JOIN users u ON u.id = c.created_by
		ORDER BY c.created_at DESC, c.id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Code, &c.CreatedBy, &c.CreatedAt, &c.OwnerName)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, total, nil
}

// ListByMember returns the courses a user is enrolled in.
func (r *CourseRepository) ListByMember(ctx context.Context, userID int64) ([]models.Course, error) {
	query := `
		SELECT c.id, c.title, c.description, c.code, c.created_by, c.created_at, u.name
		FROM courses c
		JOIN course_members cm ON cm.course_id = c.id
		JOIN users u ON u.id = c.created_by
		WHERE cm.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing member courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Code, &c.CreatedBy, &c.CreatedAt, &c.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// ListByInstructor returns the courses a user teaches.
func (r *CourseRepository) ListByInstructor(ctx context.Context, userID int64) ([]models.Course, error) {
	query := `
		SELECT c.id, c.title, c.description, c.code, c.created_by, c.created_at, u.name
		FROM courses c
		JOIN course_instructors ci ON ci.course_id = c.id
		JOIN users u ON u.id = c.created_by
		WHERE ci.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing instructor courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Code, &c.CreatedBy, &c.CreatedAt, &c.OwnerName)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// CodeExists checks whether a course with the given code already exists.
func (r *CourseRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM courses WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking course code: %w", err)
	}
	return exists, nil
}

// Update modifies a course's title and description.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE courses SET title = $1, description = $2 WHERE id = $3`,
		course.Title, course.Description, course.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Delete removes a course. Lessons, notices, assignments, submissions and
// both relation tables cascade.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}
