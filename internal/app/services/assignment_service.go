package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ipelms/ipelms/internal/app/auth"
	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/app/repositories"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/filestorage"
)

const (
	minGrade = 0
	maxGrade = 10
)

// AssignmentService defines the interface for assignment, submission and
// grading operations
type AssignmentService interface {
	CreateAssignment(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateAssignmentRequest) (*models.Assignment, error)
	GetAssignmentDetail(ctx context.Context, userID int64, role models.RoleType, assignmentID int64) (*dto.AssignmentDetailResponse, error)
	UpdateAssignment(ctx context.Context, userID int64, role models.RoleType, assignmentID int64, req *dto.CreateAssignmentRequest) (*models.Assignment, error)
	DeleteAssignment(ctx context.Context, userID int64, role models.RoleType, assignmentID int64) error
	Submit(ctx context.Context, userID int64, role models.RoleType, assignmentID int64, req *dto.SubmitRequest, attachment *multipart.FileHeader) (*models.Submission, error)
	Grade(ctx context.Context, userID int64, role models.RoleType, assignmentID, studentID int64, req *dto.GradeRequest) error
	GetGradeReport(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.GradeReportResponse, error)
	GetSubmissionAttachmentPath(ctx context.Context, userID int64, role models.RoleType, assignmentID, studentID int64) (string, error)
}

// assignmentServiceImpl implements the AssignmentService interface
type assignmentServiceImpl struct {
	assignmentRepo *repositories.AssignmentRepository
	submissionRepo *repositories.SubmissionRepository
	courseRepo     *repositories.CourseRepository
	gate           *auth.Gate
	fileStorage    filestorage.FileStorage
	logger         zerolog.Logger
}

// NewAssignmentService creates a new assignment service instance
func NewAssignmentService(
	assignmentRepo *repositories.AssignmentRepository,
	submissionRepo *repositories.SubmissionRepository,
	courseRepo *repositories.CourseRepository,
	gate *auth.Gate,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentServiceImpl{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		courseRepo:     courseRepo,
		gate:           gate,
		fileStorage:    fileStorage,
		logger:         logger,
	}
}

// CreateAssignment adds an assignment to a course. Instructor only. The due
// date is optional.
func (s *assignmentServiceImpl) CreateAssignment(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateAssignmentRequest) (*models.Assignment, error) {
	err := s.gate.Authorize(ctx, userID, role, auth.ActionCreate, auth.Resource{Kind: auth.KindAssignment, CourseID: courseID})
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(req.Title)) < minTitleLength {
		return nil, fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}

	assignment := &models.Assignment{
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   userID,
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("assignmentId", assignment.ID).Int64("courseId", courseID).Msg("Assignment created")

	return assignment, nil
}

// GetAssignmentDetail builds the assignment page. Instructors get every
// submission with student identity; students get only their own.
func (s *assignmentServiceImpl) GetAssignmentDetail(ctx context.Context, userID int64, role models.RoleType, assignmentID int64) (*dto.AssignmentDetailResponse, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	actor, err := s.gate.ActorFor(ctx, userID, role, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	decision := auth.Decide(actor, auth.ActionRead, auth.Resource{Kind: auth.KindAssignment, CourseID: assignment.CourseID})
	if !decision.Allowed {
		return nil, apperrors.ErrNotEnrolled
	}

	course, err := s.courseRepo.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	resp := &dto.AssignmentDetailResponse{
		Assignment:   assignment,
		CourseTitle:  course.Title,
		CourseCode:   course.Code,
		IsInstructor: actor.CourseInstructor || actor.Role == models.RoleAdmin,
	}

	if resp.IsInstructor {
		subs, err := s.submissionRepo.ListByAssignment(ctx, assignmentID)
		if err != nil {
			return nil, err
		}
		resp.AllSubmissions = subs
		return resp, nil
	}

	sub, err := s.submissionRepo.GetByAssignmentAndStudent(ctx, assignmentID, userID)
	if err == nil {
		resp.MySubmission = sub
	} else if !errors.Is(err, apperrors.ErrSubmissionNotFound) {
		return nil, err
	}

	return resp, nil
}

// UpdateAssignment modifies an assignment. Instructor only.
func (s *assignmentServiceImpl) UpdateAssignment(ctx context.Context, userID int64, role models.RoleType, assignmentID int64, req *dto.CreateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionUpdate, auth.Resource{Kind: auth.KindAssignment, CourseID: assignment.CourseID})
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(req.Title)) < minTitleLength {
		return nil, fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}

	assignment.Title = strings.TrimSpace(req.Title)
	assignment.Description = req.Description
	assignment.DueDate = req.DueDate

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}

	return assignment, nil
}

// DeleteAssignment removes an assignment and its submissions. Instructor only.
func (s *assignmentServiceImpl) DeleteAssignment(ctx context.Context, userID int64, role models.RoleType, assignmentID int64) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionDelete, auth.Resource{Kind: auth.KindAssignment, CourseID: assignment.CourseID})
	if err != nil {
		return err
	}

	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		return err
	}

	s.logger.Info().Int64("assignmentId", assignmentID).Msg("Assignment deleted")

	return nil
}

// Submit records (or overwrites) the student's submission. Enrollment is
// required; re-submission keeps the stored attachment when none is uploaded
// and leaves any previous grade in place.
func (s *assignmentServiceImpl) Submit(ctx context.Context, userID int64, role models.RoleType, assignmentID int64, req *dto.SubmitRequest, attachment *multipart.FileHeader) (*models.Submission, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	actor, err := s.gate.ActorFor(ctx, userID, role, assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if !actor.CourseMember && actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrNotEnrolled
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionSubmit,
		auth.Resource{Kind: auth.KindSubmission, CourseID: assignment.CourseID, OwnerID: userID})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && attachment == nil {
		return nil, fmt.Errorf("%w: submission needs text or an attachment", apperrors.ErrValidationFailed)
	}

	sub := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    userID,
	}
	if text != "" {
		sub.Text = &text
	}

	if attachment != nil {
		path, err := s.fileStorage.SaveFileWithPath(attachment, fmt.Sprintf("submissions/%d", assignmentID))
		if err != nil {
			return nil, err
		}
		sub.AttachmentPath = &path
	}

	if err := s.submissionRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("assignmentId", assignmentID).Int64("studentId", userID).Msg("Submission recorded")

	return sub, nil
}

// validateGrade checks the grading form fields. A nil grade is valid and
// clears the stored grade.
func (s *assignmentServiceImpl) validateGrade(req *dto.GradeRequest) error {
	if req.Grade == nil {
		return nil
	}
	if *req.Grade < minGrade || *req.Grade > maxGrade {
		return fmt.Errorf("%w: grade must be between %d and %d", apperrors.ErrValidationFailed, minGrade, maxGrade)
	}
	return nil
}

// Grade records a grade and optional feedback on an existing submission; a
// nil grade clears the stored one. Instructor only. Two instructors grading
// the same submission race on a single row; the later write wins, which is
// accepted behavior.
func (s *assignmentServiceImpl) Grade(ctx context.Context, userID int64, role models.RoleType, assignmentID, studentID int64, req *dto.GradeRequest) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionGrade,
		auth.Resource{Kind: auth.KindSubmission, CourseID: assignment.CourseID, OwnerID: studentID})
	if err != nil {
		return err
	}

	if err := s.validateGrade(req); err != nil {
		return err
	}

	if err := s.submissionRepo.Grade(ctx, assignmentID, studentID, req.Grade, req.Feedback); err != nil {
		return err
	}

	event := s.logger.Info().
		Int64("assignmentId", assignmentID).
		Int64("studentId", studentID)
	if req.Grade != nil {
		event = event.Float64("grade", *req.Grade)
	}
	event.Msg("Submission graded")

	return nil
}

// GetGradeReport builds the student's own per-course report with a simple
// average over the graded assignments.
func (s *assignmentServiceImpl) GetGradeReport(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.GradeReportResponse, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	err := s.gate.Authorize(ctx, userID, role, auth.ActionRead,
		auth.Resource{Kind: auth.KindSubmission, CourseID: courseID, OwnerID: userID})
	if err != nil {
		return nil, err
	}

	rows, err := s.submissionRepo.GradeReport(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.GradeReportResponse{
		CourseID: courseID,
		Rows:     make([]dto.GradeRow, 0, len(rows)),
	}

	var sum float64
	var graded int
	for _, row := range rows {
		resp.Rows = append(resp.Rows, dto.GradeRow{
			AssignmentID: row.AssignmentID,
			Title:        row.Title,
			Grade:        row.Grade,
			Feedback:     row.Feedback,
			SubmittedAt:  row.SubmittedAt,
			GradedAt:     row.GradedAt,
		})
		if row.Grade != nil {
			sum += *row.Grade
			graded++
		}
	}
	if graded > 0 {
		avg := sum / float64(graded)
		resp.Average = &avg
	}

	return resp, nil
}

// GetSubmissionAttachmentPath authorizes the download and returns the
// absolute path of a submission's attachment. Only the owning student and
// the course's instructors may download it; plain membership is not enough.
func (s *assignmentServiceImpl) GetSubmissionAttachmentPath(ctx context.Context, userID int64, role models.RoleType, assignmentID, studentID int64) (string, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return "", err
	}

	if userID != studentID {
		actor, err := s.gate.ActorFor(ctx, userID, role, assignment.CourseID)
		if err != nil {
			return "", err
		}
		if !actor.CourseInstructor && actor.Role != models.RoleAdmin {
			return "", apperrors.ErrNotInstructor
		}
	}

	sub, err := s.submissionRepo.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		return "", err
	}
	if sub.AttachmentPath == nil {
		return "", apperrors.ErrResourceNotFound
	}

	return s.fileStorage.GetFullPath(*sub.AttachmentPath), nil
}
