package dto

// CreateNoticeRequest carries the notice creation fields
type CreateNoticeRequest struct {
	Title string `json:"title" binding:"required" example:"Midterm moved"`
	Body  string `json:"body" binding:"required" example:"The midterm is now on Friday."`
}
