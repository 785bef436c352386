//go:build integration

package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ipelms/ipelms/internal/app/migrations"
	"github.com/ipelms/ipelms/internal/app/models"
)

// These tests need a real PostgreSQL instance with the schema migrated. Run
// with:
//
//	TEST_DATABASE_DSN=postgres://... go test -tags integration ./internal/app/repositories/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx := context.Background()
	m := migrations.NewMigrator(pool, "../../../migrations")
	if _, err := m.Upgrade(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err = pool.Exec(ctx,
		`TRUNCATE users, courses, course_instructors, course_members, lessons, notices, assignments, submissions RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleStudent,
	}
	if err := NewUserRepository(pool).Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func createCourse(t *testing.T, pool *pgxpool.Pool, creatorID int64, code string) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:     "Algorithms I",
		Code:      code,
		CreatedBy: creatorID,
	}
	if err := NewCourseRepository(pool).Create(context.Background(), course); err != nil {
		t.Fatalf("create course %s: %v", code, err)
	}
	return course
}

func TestCourseCreateInsertsCreatorAsInstructor(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	creator := createUser(t, pool, "creator@example.com")
	course := createCourse(t, pool, creator.ID, "ALG1")

	instructors, err := NewMembershipRepository(pool).ListInstructors(ctx, course.ID)
	if err != nil {
		t.Fatalf("list instructors: %v", err)
	}
	if len(instructors) != 1 {
		t.Fatalf("expected exactly one instructor row, got %d", len(instructors))
	}
	if instructors[0].ID != creator.ID {
		t.Errorf("instructor id = %d, want %d", instructors[0].ID, creator.ID)
	}
}

func TestSubmissionUpsertKeepsSingleRow(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	instructor := createUser(t, pool, "instructor@example.com")
	student := createUser(t, pool, "student@example.com")
	course := createCourse(t, pool, instructor.ID, "ALG2")

	assignment := &models.Assignment{
		CourseID:  course.ID,
		Title:     "Homework 1",
		CreatedBy: instructor.ID,
	}
	if err := NewAssignmentRepository(pool).Create(ctx, assignment); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	subRepo := NewSubmissionRepository(pool)
	firstText := "first answer"
	firstAttachment := "submissions/1/a.pdf"
	first := &models.Submission{
		AssignmentID:   assignment.ID,
		StudentID:      student.ID,
		Text:           &firstText,
		AttachmentPath: &firstAttachment,
	}
	if err := subRepo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	secondText := "revised answer"
	second := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Text:         &secondText,
	}
	if err := subRepo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE assignment_id = $1 AND student_id = $2`,
		assignment.ID, student.ID).Scan(&count)
	if err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one submission row, got %d", count)
	}

	stored, err := subRepo.GetByAssignmentAndStudent(ctx, assignment.ID, student.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if stored.Text == nil || *stored.Text != secondText {
		t.Errorf("text not overwritten, got %v", stored.Text)
	}
	if stored.AttachmentPath == nil || *stored.AttachmentPath != firstAttachment {
		t.Errorf("attachment should survive a text-only resubmission, got %v", stored.AttachmentPath)
	}
}

func TestResubmissionPreservesGrade(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	instructor := createUser(t, pool, "grader@example.com")
	student := createUser(t, pool, "graded@example.com")
	course := createCourse(t, pool, instructor.ID, "ALG4")

	assignment := &models.Assignment{
		CourseID:  course.ID,
		Title:     "Homework 2",
		CreatedBy: instructor.ID,
	}
	if err := NewAssignmentRepository(pool).Create(ctx, assignment); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	subRepo := NewSubmissionRepository(pool)
	firstText := "first answer"
	first := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Text:         &firstText,
	}
	if err := subRepo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	grade := 8.5
	if err := subRepo.Grade(ctx, assignment.ID, student.ID, &grade, "good work"); err != nil {
		t.Fatalf("grade: %v", err)
	}

	secondText := "revised answer"
	second := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Text:         &secondText,
	}
	if err := subRepo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stored, err := subRepo.GetByAssignmentAndStudent(ctx, assignment.ID, student.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if stored.Grade == nil || *stored.Grade != grade {
		t.Errorf("grade should survive a resubmission, got %v", stored.Grade)
	}
	if stored.Feedback == nil || *stored.Feedback != "good work" {
		t.Errorf("feedback should survive a resubmission, got %v", stored.Feedback)
	}
	if stored.GradedAt == nil {
		t.Error("graded_at should survive a resubmission")
	}
	if stored.Text == nil || *stored.Text != secondText {
		t.Errorf("text not overwritten, got %v", stored.Text)
	}
}

func TestGradeWithNilClearsStoredGrade(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	instructor := createUser(t, pool, "regrader@example.com")
	student := createUser(t, pool, "regraded@example.com")
	course := createCourse(t, pool, instructor.ID, "ALG5")

	assignment := &models.Assignment{
		CourseID:  course.ID,
		Title:     "Homework 3",
		CreatedBy: instructor.ID,
	}
	if err := NewAssignmentRepository(pool).Create(ctx, assignment); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	subRepo := NewSubmissionRepository(pool)
	text := "an answer"
	sub := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Text:         &text,
	}
	if err := subRepo.Upsert(ctx, sub); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	grade := 6.0
	if err := subRepo.Grade(ctx, assignment.ID, student.ID, &grade, "first pass"); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if err := subRepo.Grade(ctx, assignment.ID, student.ID, nil, ""); err != nil {
		t.Fatalf("clear grade: %v", err)
	}

	stored, err := subRepo.GetByAssignmentAndStudent(ctx, assignment.ID, student.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if stored.Grade != nil {
		t.Errorf("grade should be cleared, got %v", *stored.Grade)
	}
	if stored.GradedAt == nil {
		t.Error("graded_at should still record the grading action")
	}
}

func TestLeaveAsSoleInstructorKeepsCourseIntact(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	instructor := createUser(t, pool, "sole@example.com")
	course := createCourse(t, pool, instructor.ID, "ALG3")

	lesson := &models.Lesson{
		CourseID:  course.ID,
		Title:     "Intro",
		Content:   "Welcome",
		CreatedBy: instructor.ID,
	}
	lessonRepo := NewLessonRepository(pool)
	if err := lessonRepo.Create(ctx, lesson); err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	memberships := NewMembershipRepository(pool)
	if err := memberships.RemoveInstructor(ctx, course.ID, instructor.ID); err != nil {
		t.Fatalf("remove sole instructor: %v", err)
	}

	instructors, err := memberships.ListInstructors(ctx, course.ID)
	if err != nil {
		t.Fatalf("list instructors: %v", err)
	}
	if len(instructors) != 0 {
		t.Fatalf("expected no instructors left, got %d", len(instructors))
	}

	// The course and its lessons remain; nobody is auto-promoted.
	if _, err := NewCourseRepository(pool).GetByID(ctx, course.ID); err != nil {
		t.Fatalf("course should still exist: %v", err)
	}
	lessons, err := lessonRepo.ListByCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("list lessons: %v", err)
	}
	if len(lessons) != 1 {
		t.Fatalf("expected the lesson to survive, got %d rows", len(lessons))
	}
}
