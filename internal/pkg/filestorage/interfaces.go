package filestorage

import "mime/multipart"

// FileStorage defines the interface for attachment storage operations
type FileStorage interface {
	// SaveFileWithPath stores a file under the given subdirectory and returns
	// the relative path it can later be retrieved with
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file; missing files are not an error
	DeleteFile(filePath string) error

	// GetFullPath returns the absolute filesystem path for a stored file path
	GetFullPath(filePath string) string
}
