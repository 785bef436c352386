package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

// GradeReportRow is one assignment line of a student's per-course report,
// joined left so ungraded and unsubmitted assignments still appear.
type GradeReportRow struct {
	AssignmentID int64
	Title        string
	Grade        *float64
	Feedback     *string
	SubmittedAt  *time.Time
	GradedAt     *time.Time
}

// SubmissionRepository handles database operations for submissions
type SubmissionRepository struct {
	db *pgxpool.Pool
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{
		db: db,
	}
}

// Upsert records a student's submission. A re-submission overwrites the text
// and refreshes submitted_at; the stored attachment is kept when the new
// submission carries none, and an existing grade is left untouched.
func (r *SubmissionRepository) Upsert(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO submissions (assignment_id, student_id, text, attachment_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (assignment_id, student_id) DO UPDATE SET
			text = EXCLUDED.text,
			attachment_path = COALESCE(EXCLUDED.attachment_path, submissions.attachment_path),
			submitted_at = now()
		RETURNING id, attachment_path, submitted_at
	`

	err := r.db.QueryRow(ctx, query,
		sub.AssignmentID, sub.StudentID, sub.Text, sub.AttachmentPath,
	).Scan(&sub.ID, &sub.AttachmentPath, &sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("error upserting submission: %w", err)
	}

	return nil
}

// GetByAssignmentAndStudent retrieves a student's submission for an assignment.
func (r *SubmissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	query := `
		SELECT id, assignment_id, student_id, text, attachment_path, grade, feedback, submitted_at, graded_at
		FROM submissions
		WHERE assignment_id = $1 AND student_id = $2
	`

	var sub models.Submission
	err := r.db.QueryRow(ctx, query, assignmentID, studentID).Scan(
		&sub.ID,
		&sub.AssignmentID,
		&sub.StudentID,
		&sub.Text,
		&sub.AttachmentPath,
		&sub.Grade,
		&sub.Feedback,
		&sub.SubmittedAt,
		&sub.GradedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("error retrieving submission: %w", err)
	}

	return &sub, nil
}

// ListByAssignment returns all submissions for an assignment with the
// student's name and email joined in, for instructor review.
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error) {
	query := `
		SELECT s.id, s.assignment_id, s.student_id, s.text, s.attachment_path,
		       s.grade, s.feedback, s.submitted_at, s.graded_at, u.name, u.email
		FROM submissions s
		JOIN users u ON u.id = s.student_id
		WHERE s.assignment_id = $1
		ORDER BY s.submitted_at, s.id
	`

	rows, err := r.db.Query(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("error listing submissions: %w", err)
	}
	defer rows.Close()

	submissions := []*models.Submission{}
	for rows.Next() {
		var sub models.Submission
		err := rows.Scan(
			&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.Text, &sub.AttachmentPath,
			&sub.Grade, &sub.Feedback, &sub.SubmittedAt, &sub.GradedAt,
			&sub.StudentName, &sub.StudentEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning submission: %w", err)
		}
		submissions = append(submissions, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return submissions, nil
}

// Grade records a grade and feedback on an existing submission and stamps
// graded_at. Grading a student who has not submitted is an error.
func (r *SubmissionRepository) Grade(ctx context.Context, assignmentID, studentID int64, grade *float64, feedback string) error {
	query := `
		UPDATE submissions
		SET grade = $1, feedback = $2, graded_at = now()
		WHERE assignment_id = $3 AND student_id = $4
	`

	tag, err := r.db.Exec(ctx, query, grade, feedback, assignmentID, studentID)
	if err != nil {
		return fmt.Errorf("error grading submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNoSubmissionToGrade
	}
	return nil
}

// GradeReport returns one row per assignment of the course for the given
// student, with submission and grade columns NULL where absent.
func (r *SubmissionRepository) GradeReport(ctx context.Context, courseID, studentID int64) ([]GradeReportRow, error) {
	query := `
		SELECT a.id, a.title, s.grade, s.feedback, s.submitted_at, s.graded_at
		FROM assignments a
		LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = $2
		WHERE a.course_id = $1
		ORDER BY a.created_at, a.id
	`

	rows, err := r.db.Query(ctx, query, courseID, studentID)
	if err != nil {
		return nil, fmt.Errorf("error querying grade report: %w", err)
	}
	defer rows.Close()

	report := []GradeReportRow{}
	for rows.Next() {
		var row GradeReportRow
		err := rows.Scan(&row.AssignmentID, &row.Title, &row.Grade, &row.Feedback, &row.SubmittedAt, &row.GradedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning grade report row: %w", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grade report: %w", err)
	}

	return report, nil
}
