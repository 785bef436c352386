package models

import (
	"time"
)

// Lesson defines the lesson model based on the 'lessons' table
type Lesson struct {
	ID             int64     `json:"id" db:"id"`
	CourseID       int64     `json:"courseId" db:"course_id"`
	Title          string    `json:"title" db:"title"`
	Content        string    `json:"content" db:"content"`
	AttachmentPath *string   `json:"attachmentPath,omitempty" db:"attachment_path"`
	CreatedBy      int64     `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
