// Package extractor pulls plain text out of uploaded PDF and DOCX files.
//
// Conversion is delegated to external tools (pdftotext, pandoc) run under a
// timeout. When a tool is missing or fails, an in-process reader is tried.
// Extraction never fails: any error degrades to empty text and is logged
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"chatiip-backend/logger"
	"chatiip-backend/storage"
)

// Kind is the converter family chosen for a file
type Kind int

const (
	KindNone Kind = iota
	KindPDF
	KindDOCX
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindDOCX:
		return "docx"
	default:
		return "none"
	}
}

// Detect dispatches on the declared media type, then on the file suffix
func Detect(mimeType, originalName string) Kind {
	name := strings.ToLower(originalName)
	switch {
	case mimeType == storage.MimePDF || strings.HasSuffix(name, ".pdf"):
		return KindPDF
	case mimeType == storage.MimeDOCX || strings.HasSuffix(name, ".docx"):
		return KindDOCX
	default:
		return KindNone
	}
}

// Extractor turns stored PDF and DOCX files into plain text
type Extractor struct {
	log           *logger.Logger
	pdftotextPath string
	pandocPath    string
	timeout       time.Duration
	tempDir       string
	fallback      bool
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLogger sets the logger extraction failures are reported to
func WithLogger(log *logger.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithPDFToText sets the pdftotext binary
func WithPDFToText(path string) Option {
	return func(e *Extractor) {
		if path != "" {
			e.pdftotextPath = path
		}
	}
}

// WithPandoc sets the pandoc binary
func WithPandoc(path string) Option {
	return func(e *Extractor) {
		if path != "" {
			e.pandocPath = path
		}
	}
}

// WithTimeout bounds each converter run
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithTempDir sets where converter output files are written
func WithTempDir(dir string) Option {
	return func(e *Extractor) {
		e.tempDir = dir
	}
}

// WithFallback toggles the in-process readers
func WithFallback(enabled bool) Option {
	return func(e *Extractor) {
		e.fallback = enabled
	}
}

// New creates an extractor using pdftotext and pandoc from PATH with a
// two minute timeout and fallbacks enabled
func New(opts ...Option) *Extractor {
	e := &Extractor{
		log:           logger.NewNop(),
		pdftotextPath: "pdftotext",
		pandocPath:    "pandoc",
		timeout:       2 * time.Minute,
		fallback:      true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the trimmed plain text of the file at path, or "" when
// the type is unsupported or every extraction attempt fails
func (e *Extractor) Extract(ctx context.Context, path, mimeType, originalName string) string {
	kind := Detect(mimeType, originalName)
	if kind == KindNone || path == "" {
		return ""
	}
	log := e.log.With("kind", kind.String(), "path", path)

	if _, err := os.Stat(path); err != nil {
		log.Warn("extract: input not readable", "error", err)
		return ""
	}

	text, err := e.convert(ctx, kind, path)
	if err == nil && text != "" {
		return text
	}
	if err != nil {
		log.Warn("extract: converter failed", "error", err)
	}
	if !e.fallback {
		return ""
	}

	text, err = readInProcess(kind, path)
	if err != nil {
		log.Warn("extract: fallback reader failed", "error", err)
		return ""
	}
	return text
}

func (e *Extractor) convert(ctx context.Context, kind Kind, in string) (string, error) {
	out, err := os.CreateTemp(e.tempDir, kind.String()+"-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp output: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	var (
		bin  string
		args []string
	)
	switch kind {
	case KindPDF:
		bin, args = e.pdftotextPath, []string{"-layout", in, outPath}
	case KindDOCX:
		bin, args = e.pandocPath, []string{in, "-t", "plain", "-o", outPath}
	default:
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s timed out after %s", bin, e.timeout)
		}
		return "", fmt.Errorf("%s failed: %w; out=%s", bin, err, strings.TrimSpace(string(output)))
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("read converter output: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
