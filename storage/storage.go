package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a key has no stored object
var ErrNotFound = errors.New("storage: object not found")

// Storage interface for blob storage backends
type Storage interface {
	// Upload writes data under key, replacing any existing object
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error

	// Download opens the object stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object; a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}

// LocalPather is implemented by backends whose objects are plain files
type LocalPather interface {
	LocalPath(key string) string
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3 bucket is required for S3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
	MimeDOC  = "application/msword"
)

// ContentTypeFor determines content type from filename
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".txt":
		return MimeText
	case ".doc":
		return MimeDOC
	case ".docx":
		return MimeDOCX
	default:
		return "application/octet-stream"
	}
}

// ExtensionFor returns the lowercase extension of name, or one guessed from
// the declared media type when the name has none
func ExtensionFor(name, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		return ext
	}
	switch mimeType {
	case MimePDF:
		return ".pdf"
	case MimeDOCX:
		return ".docx"
	case MimeText:
		return ".txt"
	default:
		return ""
	}
}
