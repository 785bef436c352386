package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ipelms/ipelms/internal/app/auth"
	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/app/repositories"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
)

// NoticeService defines the interface for notice operations
type NoticeService interface {
	CreateNotice(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateNoticeRequest) (*models.Notice, error)
	GetNotice(ctx context.Context, userID int64, role models.RoleType, noticeID int64) (*models.Notice, error)
	UpdateNotice(ctx context.Context, userID int64, role models.RoleType, noticeID int64, req *dto.CreateNoticeRequest) (*models.Notice, error)
	DeleteNotice(ctx context.Context, userID int64, role models.RoleType, noticeID int64) error
}

// noticeServiceImpl implements the NoticeService interface
type noticeServiceImpl struct {
	noticeRepo *repositories.NoticeRepository
	gate       *auth.Gate
	logger     zerolog.Logger
}

// NewNoticeService creates a new notice service instance
func NewNoticeService(noticeRepo *repositories.NoticeRepository, gate *auth.Gate, logger zerolog.Logger) NoticeService {
	return &noticeServiceImpl{
		noticeRepo: noticeRepo,
		gate:       gate,
		logger:     logger,
	}
}

// validateNotice checks the notice form fields
func (s *noticeServiceImpl) validateNotice(req *dto.CreateNoticeRequest) error {
	if len(strings.TrimSpace(req.Title)) < minTitleLength {
		return fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}
	if strings.TrimSpace(req.Body) == "" {
		return fmt.Errorf("%w: body cannot be empty", apperrors.ErrValidationFailed)
	}
	return nil
}

// CreateNotice posts a notice to a course. Instructor only.
func (s *noticeServiceImpl) CreateNotice(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateNoticeRequest) (*models.Notice, error) {
	err := s.gate.Authorize(ctx, userID, role, auth.ActionCreate, auth.Resource{Kind: auth.KindNotice, CourseID: courseID})
	if err != nil {
		return nil, err
	}

	if err := s.validateNotice(req); err != nil {
		return nil, err
	}

	notice := &models.Notice{
		CourseID:  courseID,
		Title:     strings.TrimSpace(req.Title),
		Body:      req.Body,
		CreatedBy: userID,
	}

	if err := s.noticeRepo.Create(ctx, notice); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("noticeId", notice.ID).Int64("courseId", courseID).Msg("Notice posted")

	return notice, nil
}

// GetNotice retrieves a notice for a course participant.
func (s *noticeServiceImpl) GetNotice(ctx context.Context, userID int64, role models.RoleType, noticeID int64) (*models.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, noticeID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionRead, auth.Resource{Kind: auth.KindNotice, CourseID: notice.CourseID})
	if err != nil {
		return nil, err
	}

	return notice, nil
}

// UpdateNotice modifies a notice. Instructor only.
func (s *noticeServiceImpl) UpdateNotice(ctx context.Context, userID int64, role models.RoleType, noticeID int64, req *dto.CreateNoticeRequest) (*models.Notice, error) {
	notice, err := s.noticeRepo.GetByID(ctx, noticeID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionUpdate, auth.Resource{Kind: auth.KindNotice, CourseID: notice.CourseID})
	if err != nil {
		return nil, err
	}

	if err := s.validateNotice(req); err != nil {
		return nil, err
	}

	notice.Title = strings.TrimSpace(req.Title)
	notice.Body = req.Body

	if err := s.noticeRepo.Update(ctx, notice); err != nil {
		return nil, err
	}

	return notice, nil
}

// DeleteNotice removes a notice. Instructor only.
func (s *noticeServiceImpl) DeleteNotice(ctx context.Context, userID int64, role models.RoleType, noticeID int64) error {
	notice, err := s.noticeRepo.GetByID(ctx, noticeID)
	if err != nil {
		return err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionDelete, auth.Resource{Kind: auth.KindNotice, CourseID: notice.CourseID})
	if err != nil {
		return err
	}

	if err := s.noticeRepo.Delete(ctx, noticeID); err != nil {
		return err
	}

	s.logger.Info().Int64("noticeId", noticeID).Msg("Notice deleted")

	return nil
}
