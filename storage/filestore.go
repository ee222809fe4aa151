package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"
	"unicode"

	"chatiip-backend/logger"
	"chatiip-backend/models"

	"github.com/google/uuid"
)

// MaxFileBytes is the largest accepted upload
const MaxFileBytes int64 = 50 << 20

var (
	// ErrPayloadTooLarge matches every TooLargeError
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrInvalidPayload is returned for undecodable base64 uploads
	ErrInvalidPayload = errors.New("invalid base64 file payload")
)

// TooLargeError reports an upload over the size ceiling
type TooLargeError struct {
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s exceeds the %s limit, compress or split the file", humanSize(e.Size), humanSize(e.Limit))
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

func humanSize(n int64) string {
	const mib = 1 << 20
	if n >= mib {
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	}
	return fmt.Sprintf("%d KB", (n+1023)/1024)
}

// FileStore persists uploaded document files on a Storage backend and
// derives their public URLs
type FileStore struct {
	backend      Storage
	log          *logger.Logger
	maxBytes     int64
	keyPrefix    string
	publicPrefix string
	now          func() time.Time
}

// FileStoreOption is a functional option for FileStore
type FileStoreOption func(*FileStore)

// WithMaxBytes overrides the size ceiling
func WithMaxBytes(n int64) FileStoreOption {
	return func(s *FileStore) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithPublicPrefix sets the URL path local uploads are served under
func WithPublicPrefix(prefix string) FileStoreOption {
	return func(s *FileStore) {
		s.publicPrefix = strings.TrimSuffix(prefix, "/")
	}
}

// WithKeyPrefix sets the directory new files are stored in
func WithKeyPrefix(prefix string) FileStoreOption {
	return func(s *FileStore) {
		s.keyPrefix = strings.Trim(prefix, "/")
	}
}

// WithFileStoreLogger sets the logger used for swallowed failures
func WithFileStoreLogger(log *logger.Logger) FileStoreOption {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces time.Now for filename generation
func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a file store on top of backend
func NewFileStore(backend Storage, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		backend:      backend,
		log:          logger.NewNop(),
		maxBytes:     MaxFileBytes,
		keyPrefix:    "docs",
		publicPrefix: "/uploads",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxBytes returns the configured ceiling
func (s *FileStore) MaxBytes() int64 {
	return s.maxBytes
}

// Store writes data under a fresh collision-resistant name. Payloads over
// the ceiling fail with *TooLargeError before anything is written
func (s *FileStore) Store(ctx context.Context, data []byte, originalName, mimeType string) (*models.FileRef, error) {
	size := int64(len(data))
	if size > s.maxBytes {
		return nil, &TooLargeError{Size: size, Limit: s.maxBytes}
	}

	ext := ExtensionFor(originalName, mimeType)
	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:16], ext)
	key := name
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + name
	}
	if originalName == "" {
		originalName = name
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if err := s.backend.Upload(ctx, key, bytes.NewReader(data), mimeType); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	return &models.FileRef{
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		StoragePath:  key,
		PublicURL:    s.PublicURL(key),
	}, nil
}

// StoreBase64 decodes a base64 payload (a data: URL is accepted) and stores
// it. A blank payload stores nothing and returns nil
func (s *FileStore) StoreBase64(ctx context.Context, encoded, originalName, mimeType string) (*models.FileRef, error) {
	payload := stripSpace(StripDataURL(encoded))
	if payload == "" {
		return nil, nil
	}

	// Reject oversized payloads before allocating the decode buffer
	if size := decodedSize(payload); size > s.maxBytes {
		return nil, &TooLargeError{Size: size, Limit: s.maxBytes}
	}

	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return s.Store(ctx, data, originalName, mimeType)
}

// PublicURL derives the public path of a stored key
func (s *FileStore) PublicURL(key string) string {
	return s.publicPrefix + "/" + strings.TrimPrefix(key, "/")
}

// Delete removes a stored file. Missing files are ignored and other
// failures are logged, never returned
func (s *FileStore) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("file delete failed", "storage_path", key, "error", err)
	}
}

// Exists reports whether key is still stored
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	return s.backend.Exists(ctx, key)
}

// Open streams a stored file
func (s *FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Download(ctx, key)
}

// Materialize returns a filesystem path holding the content of key, for
// tools that need a real file. cleanup must always be called
func (s *FileStore) Materialize(ctx context.Context, key string) (string, func(), error) {
	noop := func() {}
	if lp, ok := s.backend.(LocalPather); ok {
		return lp.LocalPath(key), noop, nil
	}

	rc, err := s.backend.Download(ctx, key)
	if err != nil {
		return "", noop, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "doc-*"+path.Ext(key))
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		cleanup()
		return "", noop, fmt.Errorf("download to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", noop, err
	}
	return tmp.Name(), cleanup, nil
}

// StripDataURL drops everything up to and including "base64," and trims
func StripDataURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "base64,"); i >= 0 {
		raw = raw[i+len("base64,"):]
	}
	return raw
}

// DecodeBase64 accepts standard or URL-safe alphabets, padded or not, and
// ignores embedded whitespace
func DecodeBase64(s string) ([]byte, error) {
	s = stripSpace(s)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, ErrInvalidPayload
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// decodedSize is the byte length s decodes to, padded or not
func decodedSize(s string) int64 {
	n := int64(len(strings.TrimRight(s, "=")))
	return n * 6 / 8
}
