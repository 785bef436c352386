package dto

// CreateLessonRequest carries the lesson creation fields.
// Bound from multipart form data because an attachment may ride along.
type CreateLessonRequest struct {
	Title   string `form:"title" binding:"required" example:"Week 1 - Introduction"`
	Content string `form:"content" example:"Lecture notes..."`
}

// UpdateLessonRequest carries the lesson update fields
type UpdateLessonRequest struct {
	Title   string `form:"title" binding:"required"`
	Content string `form:"content"`
}
