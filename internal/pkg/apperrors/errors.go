package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotInstructor    = errors.New("only course instructors can perform this action")
	ErrNotEnrolled      = errors.New("user is not enrolled in this course")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserHasContent     = errors.New("user has created content and cannot be deleted")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseCodeExists    = errors.New("course with this code already exists")
	ErrAlreadyEnrolled     = errors.New("user is already enrolled in this course")
	ErrAlreadyInstructor   = errors.New("user is already an instructor of this course")
	ErrInstructorNotListed = errors.New("user is not an instructor of this course")
)

// Content errors
var (
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrNoticeNotFound      = errors.New("notice not found")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrNoSubmissionToGrade = errors.New("student has no submission for this assignment")
	ErrFileTypeNotAllowed  = errors.New("file extension not allowed")
)
