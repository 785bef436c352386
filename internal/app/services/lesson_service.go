package services

import (
	"context"
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

// LessonService defines the interface for lesson operations
type LessonService interface {
	CreateLesson(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateLessonRequest, attachment *multipart.FileHeader) (*models.Lesson, error)
	GetLesson(ctx context.Context, userID int64, role models.RoleType, lessonID int64) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, userID int64, role models.RoleType, lessonID int64, req *dto.UpdateLessonRequest, attachment *multipart.FileHeader) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, userID int64, role models.RoleType, lessonID int64) error
	GetAttachmentPath(ctx context.Context, userID int64, role models.RoleType, lessonID int64) (string, error)
}

// lessonServiceImpl implements the LessonService interface
type lessonServiceImpl struct {
	lessonRepo  *repositories.LessonRepository
	gate        *auth.Gate
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
}

// NewLessonService creates a new lesson service instance
func NewLessonService(
	lessonRepo *repositories.LessonRepository,
	gate *auth.Gate,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) LessonService {
	return &lessonServiceImpl{
		lessonRepo:  lessonRepo,
		gate:        gate,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// CreateLesson adds a lesson to a course. Instructor only. The attachment is
// optional and stored under the course's lesson directory.
func (s *lessonServiceImpl) CreateLesson(ctx context.Context, userID int64, role models.RoleType, courseID int64, req *dto.CreateLessonRequest, attachment *multipart.FileHeader) (*models.Lesson, error) {
	err := s.gate.Authorize(ctx, userID, role, auth.ActionCreate, auth.Resource{Kind: auth.KindLesson, CourseID: courseID})
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(req.Title)) < minTitleLength {
		return nil, fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}

	lesson := &models.Lesson{
		CourseID:  courseID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		CreatedBy: userID,
	}

	if attachment != nil {
		path, err := s.fileStorage.SaveFileWithPath(attachment, fmt.Sprintf("lessons/%d", courseID))
		if err != nil {
			return nil, err
		}
		lesson.AttachmentPath = &path
	}

	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		if lesson.AttachmentPath != nil {
			if delErr := s.fileStorage.DeleteFile(*lesson.AttachmentPath); delErr != nil {
				s.logger.Warn().Err(delErr).Str("path", *lesson.AttachmentPath).Msg("Failed to clean up attachment after create failure")
			}
		}
		return nil, err
	}

	s.logger.Info().Int64("lessonId", lesson.ID).Int64("courseId", courseID).Msg("Lesson created")

	return lesson, nil
}

// GetLesson retrieves a lesson for a course participant.
func (s *lessonServiceImpl) GetLesson(ctx context.Context, userID int64, role models.RoleType, lessonID int64) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionRead, auth.Resource{Kind: auth.KindLesson, CourseID: lesson.CourseID})
	if err != nil {
		return nil, err
	}

	return lesson, nil
}

// UpdateLesson modifies a lesson. A new attachment replaces the old one;
// absent attachment keeps the stored file.
func (s *lessonServiceImpl) UpdateLesson(ctx context.Context, userID int64, role models.RoleType, lessonID int64, req *dto.UpdateLessonRequest, attachment *multipart.FileHeader) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionUpdate, auth.Resource{Kind: auth.KindLesson, CourseID: lesson.CourseID})
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(req.Title)) < minTitleLength {
		return nil, fmt.Errorf("%w: title must be at least %d characters", apperrors.ErrValidationFailed, minTitleLength)
	}

	lesson.Title = strings.TrimSpace(req.Title)
	lesson.Content = req.Content

	var oldPath *string
	if attachment != nil {
		path, err := s.fileStorage.SaveFileWithPath(attachment, fmt.Sprintf("lessons/%d", lesson.CourseID))
		if err != nil {
			return nil, err
		}
		oldPath = lesson.AttachmentPath
		lesson.AttachmentPath = &path
	}

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		return nil, err
	}

	if oldPath != nil {
		if err := s.fileStorage.DeleteFile(*oldPath); err != nil {
			s.logger.Warn().Err(err).Str("path", *oldPath).Msg("Failed to remove replaced attachment")
		}
	}

	return lesson, nil
}

// DeleteLesson removes a lesson and its stored attachment.
func (s *lessonServiceImpl) DeleteLesson(ctx context.Context, userID int64, role models.RoleType, lessonID int64) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionDelete, auth.Resource{Kind: auth.KindLesson, CourseID: lesson.CourseID})
	if err != nil {
		return err
	}

	if err := s.lessonRepo.Delete(ctx, lessonID); err != nil {
		return err
	}

	if lesson.AttachmentPath != nil {
		if err := s.fileStorage.DeleteFile(*lesson.AttachmentPath); err != nil {
			s.logger.Warn().Err(err).Str("path", *lesson.AttachmentPath).Msg("Failed to remove attachment of deleted lesson")
		}
	}

	s.logger.Info().Int64("lessonId", lessonID).Msg("Lesson deleted")

	return nil
}

// GetAttachmentPath authorizes the download and returns the absolute path of
// the lesson's attachment.
func (s *lessonServiceImpl) GetAttachmentPath(ctx context.Context, userID int64, role models.RoleType, lessonID int64) (string, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return "", err
	}

	err = s.gate.Authorize(ctx, userID, role, auth.ActionRead, auth.Resource{Kind: auth.KindLesson, CourseID: lesson.CourseID})
	if err != nil {
		return "", err
	}

	if lesson.AttachmentPath == nil {
		return "", apperrors.ErrResourceNotFound
	}

	return s.fileStorage.GetFullPath(*lesson.AttachmentPath), nil
}
