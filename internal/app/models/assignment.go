package models

import (
	"time"
)

// Assignment defines the assignment model based on the 'assignments' table.
// DueDate arrived in a later migration and is therefore nullable.
type Assignment struct {
	ID          int64      `json:"id" db:"id"`
	CourseID    int64      `json:"courseId" db:"course_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty" db:"due_date"`
	CreatedBy   int64      `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Submission defines the submission model based on the 'submissions' table.
// At most one row exists per (assignment, student); re-submission and grading
// overwrite the row rather than appending.
type Submission struct {
	ID             int64      `json:"id" db:"id"`
	AssignmentID   int64      `json:"assignmentId" db:"assignment_id"`
	StudentID      int64      `json:"studentId" db:"student_id"`
	Text           *string    `json:"text,omitempty" db:"text"`
	AttachmentPath *string    `json:"attachmentPath,omitempty" db:"attachment_path"`
	Grade          *float64   `json:"grade,omitempty" db:"grade"`
	Feedback       *string    `json:"feedback,omitempty" db:"feedback"`
	SubmittedAt    time.Time  `json:"submittedAt" db:"submitted_at"`
	GradedAt       *time.Time `json:"gradedAt,omitempty" db:"graded_at"`

	// StudentName and StudentEmail are joined from users for instructor views.
	StudentName  string `json:"studentName,omitempty" db:"-"`
	StudentEmail string `json:"studentEmail,omitempty" db:"-"`
}
