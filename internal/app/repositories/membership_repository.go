package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/dberrors"
)

// MembershipRepository handles the course_instructors and course_members
// relation tables.
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{
		db: db,
	}
}

// IsInstructor reports whether the user is listed as an instructor of the course.
func (r *MembershipRepository) IsInstructor(ctx context.Context, courseID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_instructors WHERE course_id = $1 AND user_id = $2)`,
		courseID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking instructor relation: %w", err)
	}
	return exists, nil
}

// IsMember reports whether the user is enrolled in the course.
func (r *MembershipRepository) IsMember(ctx context.Context, courseID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM course_members WHERE course_id = $1 AND user_id = $2)`,
		courseID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking member relation: %w", err)
	}
	return exists, nil
}

// AddInstructor lists a user as instructor of a course.
func (r *MembershipRepository) AddInstructor(ctx context.Context, courseID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO course_instructors (course_id, user_id) VALUES ($1, $2)`,
		courseID, userID,
	)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyInstructor
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResourceNotFound
		}
		return fmt.Errorf("error adding instructor: %w", err)
	}
	return nil
}

// RemoveInstructor removes a user from the instructor list of a course.
func (r *MembershipRepository) RemoveInstructor(ctx context.Context, courseID, userID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM course_instructors WHERE course_id = $1 AND user_id = $2`,
		courseID, userID,
	)
	if err != nil {
		return fmt.Errorf("error removing instructor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInstructorNotListed
	}
	return nil
}

// AddMember enrolls a user in a course.
func (r *MembershipRepository) AddMember(ctx context.Context, courseID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO course_members (course_id, user_id) VALUES ($1, $2)`,
		courseID, userID,
	)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyEnrolled
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error enrolling member: %w", err)
	}
	return nil
}

// RemoveMember removes a user's enrollment in a course. It reports whether a
// row was removed so callers can distinguish leaving from a no-op.
func (r *MembershipRepository) RemoveMember(ctx context.Context, courseID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM course_members WHERE course_id = $1 AND user_id = $2`,
		courseID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("error removing member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListInstructors returns the instructors of a course ordered by name.
func (r *MembershipRepository) ListInstructors(ctx context.Context, courseID int64) ([]models.CourseParticipant, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM course_instructors ci
		JOIN users u ON u.id = ci.user_id
		WHERE ci.course_id = $1
		ORDER BY u.name
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing instructors: %w", err)
	}
	defer rows.Close()

	instructors := []models.CourseParticipant{}
	for rows.Next() {
		var ins models.CourseParticipant
		if err := rows.Scan(&ins.ID, &ins.Name, &ins.Email); err != nil {
			return nil, fmt.Errorf("error scanning instructor: %w", err)
		}
		instructors = append(instructors, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instructors: %w", err)
	}

	return instructors, nil
}

// ListMembers returns the enrolled users of a course ordered by name.
func (r *MembershipRepository) ListMembers(ctx context.Context, courseID int64) ([]models.CourseParticipant, error) {
	query := `
		SELECT u.id, u.name, u.email
		FROM course_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.course_id = $1
		ORDER BY u.name
	`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing members: %w", err)
	}
	defer rows.Close()

	members := []models.CourseParticipant{}
	for rows.Next() {
		var m models.CourseParticipant
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// CountMembers returns the number of enrolled users in a course.
func (r *MembershipRepository) CountMembers(ctx context.Context, courseID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM course_members WHERE course_id = $1`, courseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting members: %w", err)
	}
	return count, nil
}
