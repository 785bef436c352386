package dto

import (
	"github.com/ipelms/ipelms/internal/app/models"
)

// CreateCourseRequest carries the course creation fields
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required" example:"Algorithms I"`
	Description string `json:"description" example:"Sorting, searching and graphs"`
	Code        string `json:"code" binding:"required" example:"ALG1"`
}

// MyCoursesResponse splits the user's courses by relation
type MyCoursesResponse struct {
	Enrolled []models.Course `json:"enrolled"`
	Teaching []models.Course `json:"teaching"`
}

// CourseDetailResponse aggregates everything the course page needs
type CourseDetailResponse struct {
	Course       *models.Course      `json:"course"`
	Instructors  []UserResponse      `json:"instructors"`
	MembersCount int64               `json:"membersCount"`
	Lessons      []models.Lesson     `json:"lessons"`
	Notices      []models.Notice     `json:"notices"`
	Assignments  []models.Assignment `json:"assignments"`
	IsInstructor bool                `json:"isInstructor"`
	IsMember     bool                `json:"isMember"`
}
