package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ipelms/ipelms/internal/app/auth"
	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/app/repositories"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/helpers"
)

const minTitleLength = 3

var courseCodeRegex = regexp.MustCompile(`^[A-Z0-9-]{3,10}$`)

// CourseService defines the interface for course operations
type CourseService interface {
	CreateCourse(ctx context.Context, userID int64, req *dto.CreateCourseRequest) (*models.Course, error)
	GetAllCourses(ctx context.Context, page, pageSize int) ([]models.Course, int64, error)
	GetCourseDetail(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.CourseDetailResponse, error)
	UpdateCourse(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, userID int64, role models.RoleType, courseID int64) error
	JoinCourse(ctx context.Context, userID, courseID int64) (alreadyMember bool, err error)
	LeaveCourse(ctx context.Context, userID, courseID int64) (wasMember bool, err error)
	AddInstructor(ctx context.Context, userID int64, role models.RoleType, courseID, targetUserID int64) error
	RemoveInstructor(ctx context.Context, userID int64, role models.RoleType, courseID, targetUserID int64) error
	GetMyCourses(ctx context.Context, userID int64) (enrolled, teaching []models.Course, err error)
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courseRepo     *repositories.CourseRepository
	membershipRepo *repositories.MembershipRepository
	lessonRepo     *repositories.LessonRepository
	noticeRepo     *repositories.NoticeRepository
	assignmentRepo *repositories.AssignmentRepository
	gate           *auth.Gate
	logger         zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(
	courseRepo *repositories.CourseRepository,
	membershipRepo *repositories.MembershipRepository,
	lessonRepo *repositories.LessonRepository,
	noticeRepo *repositories.NoticeRepository,
	assignmentRepo *repositories.AssignmentRepository,
	gate *auth.Gate,
	logger zerolog.Logger,
) CourseService {
	return &courseServiceImpl{
		courseRepo:     courseRepo,
		membershipRepo: membershipRepo,
		lessonRepo:     lessonRepo,
		noticeRepo:     noticeRepo,
		assignmentRepo: assignmentRepo,
		gate:           gate,
		logger:         logger,
	}
}

// validateCourse checks the course form fields. The code is matched after
// uppercasing, so "alg1" and "ALG1" are the same course code.
func (s *courseServiceImpl) validateCourse(title, code string) error {
	if len(strings.TrimSpace(title)) < minTitleLength {
		return fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}
	if !courseCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: code must be 3-10 uppercase letters, digits or dashes", apperrors.ErrValidationFailed)
	}
	return nil
}

// CreateCourse creates a course and lists the creator as its instructor.
// Any authenticated user may create a course.
func (s *courseServiceImpl) CreateCourse(ctx context.Context, userID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validateCourse(req.Title, code); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Code:        code,
		CreatedBy:   userID,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseId", course.ID).Str("code", course.Code).Int64("createdBy", userID).Msg("Course created")

	return course, nil
}

// GetAllCourses returns a page of courses and the total count.
func (s *courseServiceImpl) GetAllCourses(ctx context.Context, page, pageSize int) ([]models.Course, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	return s.courseRepo.List(ctx, offset, limit)
}

// GetCourseDetail aggregates the course page: the course, its instructors,
// member count and content lists, plus the viewer's own relation flags.
// The route is authenticated; any signed-in user gets the full page, and the
// flags drive what the viewer may do with its contents.
func (s *courseServiceImpl) GetCourseDetail(ctx context.Context, userID int64, role models.RoleType, courseID int64) (*dto.CourseDetailResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	actor, err := s.gate.ActorFor(ctx, userID, role, courseID)
	if err != nil {
		return nil, err
	}

	instructors, err := s.membershipRepo.ListInstructors(ctx, courseID)
	if err != nil {
		return nil, err
	}

	membersCount, err := s.membershipRepo.CountMembers(ctx, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	notices, err := s.noticeRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CourseDetailResponse{
		Course:       course,
		Instructors:  make([]dto.UserResponse, 0, len(instructors)),
		MembersCount: int64(membersCount),
		Lessons:      lessons,
		Notices:      notices,
		Assignments:  assignments,
		IsInstructor: actor.CourseInstructor || actor.Role == models.RoleAdmin,
		IsMember:     actor.CourseMember,
	}
	for _, ins := range instructors {
		resp.Instructors = append(resp.Instructors, dto.UserResponse{ID: ins.ID, Name: ins.Name, Email: ins.Email})
	}

	return resp, nil
}

// UpdateCourse modifies a course's title and description. Instructor only.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionUpdate, auth.Resource{Kind: auth.KindCourse, CourseID: courseID})
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(req.Title)) < minTitleLength {
		return nil, fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}

	course.Title = strings.TrimSpace(req.Title)
	course.Description = strings.TrimSpace(req.Description)

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// DeleteCourse removes a course and all its content. Instructor only.
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, userID int64, role models.RoleType, courseID int64) error {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return err
	}

	err := s.gate.Authorize(ctx, userID, role, auth.ActionDelete, auth.Resource{Kind: auth.KindCourse, CourseID: courseID})
	if err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return err
	}

	s.logger.Info().Int64("courseId", courseID).Int64("deletedBy", userID).Msg("Course deleted")

	return nil
}

// JoinCourse enrolls the user. Joining a course the user already belongs to
// is reported, not failed. Instructors may also enroll; the relations are
// independent.
func (s *courseServiceImpl) JoinCourse(ctx context.Context, userID, courseID int64) (bool, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return false, err
	}

	err := s.membershipRepo.AddMember(ctx, courseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyEnrolled) {
			return true, nil
		}
		return false, err
	}

	s.logger.Info().Int64("courseId", courseID).Int64("userId", userID).Msg("User joined course")

	return false, nil
}

// LeaveCourse removes the user's enrollment. Leaving does not touch the
// instructor relation; a sole instructor leaving as member keeps the course
// intact.
func (s *courseServiceImpl) LeaveCourse(ctx context.Context, userID, courseID int64) (bool, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return false, err
	}

	removed, err := s.membershipRepo.RemoveMember(ctx, courseID, userID)
	if err != nil {
		return false, err
	}
	if removed {
		s.logger.Info().Int64("courseId", courseID).Int64("userId", userID).Msg("User left course")
	}

	return removed, nil
}

// AddInstructor lists another user as an instructor of the course. Only a
// current instructor or an admin may promote.
func (s *courseServiceImpl) AddInstructor(ctx context.Context, userID int64, role models.RoleType, courseID, targetUserID int64) error {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return err
	}

	err := s.gate.Authorize(ctx, userID, role, auth.ActionUpdate, auth.Resource{Kind: auth.KindCourse, CourseID: courseID})
	if err != nil {
		return err
	}

	if err := s.membershipRepo.AddInstructor(ctx, courseID, targetUserID); err != nil {
		return err
	}

	s.logger.Info().Int64("courseId", courseID).Int64("userId", targetUserID).Int64("by", userID).Msg("Instructor listed")

	return nil
}

// RemoveInstructor delists an instructor. Removing the sole instructor is
// permitted and leaves the course instructor-less; nobody is auto-promoted.
func (s *courseServiceImpl) RemoveInstructor(ctx context.Context, userID int64, role models.RoleType, courseID, targetUserID int64) error {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return err
	}

	err := s.gate.Authorize(ctx, userID, role, auth.ActionUpdate, auth.Resource{Kind: auth.KindCourse, CourseID: courseID})
	if err != nil {
		return err
	}

	if err := s.membershipRepo.RemoveInstructor(ctx, courseID, targetUserID); err != nil {
		return err
	}

	s.logger.Info().Int64("courseId", courseID).Int64("userId", targetUserID).Int64("by", userID).Msg("Instructor delisted")

	return nil
}

// GetMyCourses returns the courses the user is enrolled in and the courses
// they teach.
func (s *courseServiceImpl) GetMyCourses(ctx context.Context, userID int64) ([]models.Course, []models.Course, error) {
	enrolled, err := s.courseRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	teaching, err := s.courseRepo.ListByInstructor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return enrolled, teaching, nil
}
