package filestorage

import (
	"mime/multipart"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	ID       string // Opaque id handed back to clients
	Path     string // Path on disk
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // MIME type declared by the uploader
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile stores an uploaded file under a fresh id
	SaveFile(fileHeader *multipart.FileHeader) (*FileInfo, error)

	// DeleteFile removes a file; missing files are not an error
	DeleteFile(id string) error

	// GetFullPath resolves an id to the file on disk
	GetFullPath(id string) (string, error)

	// Exists reports whether id names a stored file
	Exists(id string) bool
}
