package dto

import (
	"time"

	"github.com/ipelms/ipelms/internal/app/models"
)

// CreateAssignmentRequest carries the assignment creation fields
type CreateAssignmentRequest struct {
	Title       string     `json:"title" binding:"required" example:"Problem set 1"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty" example:"2024-06-01T23:59:00Z"`
}

// AssignmentDetailResponse is the assignment page payload. MySubmission is set
// for enrolled students, AllSubmissions for instructors.
type AssignmentDetailResponse struct {
	Assignment     *models.Assignment   `json:"assignment"`
	CourseTitle    string               `json:"courseTitle"`
	CourseCode     string               `json:"courseCode"`
	MySubmission   *models.Submission   `json:"mySubmission,omitempty"`
	AllSubmissions []*models.Submission `json:"allSubmissions,omitempty"`
	IsInstructor   bool                 `json:"isInstructor"`
}

// SubmitRequest carries a student submission. Bound from multipart form data.
type SubmitRequest struct {
	Text string `form:"text"`
}

// GradeRequest carries an instructor grading action. A null grade clears the
// stored one while still refreshing graded_at.
type GradeRequest struct {
	Grade    *float64 `json:"grade" example:"8.5"`
	Feedback string   `json:"feedback" example:"Good work, revise question 3."`
}

// GradeRow is one line of a student's grade report for a course
type GradeRow struct {
	AssignmentID int64      `json:"assignmentId"`
	Title        string     `json:"title"`
	Grade        *float64   `json:"grade,omitempty"`
	Feedback     *string    `json:"feedback,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	GradedAt     *time.Time `json:"gradedAt,omitempty"`
}

// GradeReportResponse is the per-course grade report with a simple average
type GradeReportResponse struct {
	CourseID int64      `json:"courseId"`
	Rows     []GradeRow `json:"rows"`
	Average  *float64   `json:"average,omitempty"`
}
