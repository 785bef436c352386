package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/logger"
)

// AllowedExtensions lists the attachment file extensions accepted for upload.
var AllowedExtensions = map[string]bool{
	".pdf": true, ".txt": true, ".md": true, ".png": true, ".jpg": true,
	".jpeg": true, ".gif": true, ".zip": true, ".pptx": true, ".docx": true,
	".csv": true,
}

// LocalStorage handles saving attachments to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// SaveFileWithPath saves an uploaded file to a subdirectory of the storage root.
// The stored name is a fresh UUID so uploads never collide or traverse paths.
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !AllowedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", apperrors.ErrFileTypeNotAllowed, ext)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := ls.basePath
	if subPath != "" {
		fullDirPath = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	relPath := uniqueFilename
	if subPath != "" {
		relPath = filepath.Join(subPath, uniqueFilename)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", relPath).Msg("Attachment saved")
	return relPath, nil
}

// DeleteFile removes a stored file. A missing file is treated as already deleted.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	fullPath := ls.GetFullPath(filePath)
	if fullPath == "" {
		return fmt.Errorf("refusing to delete path outside storage root: %s", filePath)
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// GetFullPath resolves a stored relative path against the storage root.
// Returns an empty string if the path would escape the root.
func (ls *LocalStorage) GetFullPath(filePath string) string {
	full := filepath.Join(ls.basePath, filePath)

	absBase, err := filepath.Abs(ls.basePath)
	if err != nil {
		return ""
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return ""
	}
	if absFull != absBase && !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return ""
	}
	return absFull
}
