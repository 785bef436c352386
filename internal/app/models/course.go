package models

import (
	"time"
)

// Course defines the course model based on the 'courses' table
type Course struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Title       string    `json:"title" db:"title" example:"Algorithms I"`
	Description string    `json:"description" db:"description"`
	Code        string    `json:"code" db:"code" example:"ALG1"`
	CreatedBy   int64     `json:"createdBy" db:"created_by" example:"1"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// OwnerName is joined from users when listing; not a table column.
	OwnerName string `json:"ownerName,omitempty" db:"-"`
}

// CourseInstructor is a row of the 'course_instructors' join relation.
// Instructor status and membership are tracked as independent relations:
// a user may hold both for the same course.
type CourseInstructor struct {
	CourseID int64 `json:"courseId" db:"course_id"`
	UserID   int64 `json:"userId" db:"user_id"`
}

// CourseMember is a row of the 'course_members' join relation.
type CourseMember struct {
	CourseID int64 `json:"courseId" db:"course_id"`
	UserID   int64 `json:"userId" db:"user_id"`
}

// CourseParticipant is a user joined through one of the relation tables,
// as shown on the course detail page.
type CourseParticipant struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}
