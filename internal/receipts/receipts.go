package receipts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Store keeps receipt files. Keys returned by Upload are what expenses reference.
type Store interface {
	// Upload stores a file and returns its key
	Upload(ctx context.Context, id uuid.UUID, filename string, data io.Reader) (string, error)

	// Open returns the file stored under key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the file stored under key. Missing files are not an error.
	Delete(ctx context.Context, key string) error
}

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// New creates the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.ReceiptsConfig) (Store, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocalStore(cfg.Dir)
	case BackendS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown receipts backend: %s", cfg.Backend)
	}
}

// Allowed lists the accepted receipt content types.
var Allowed = []string{
	"application/pdf",
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/heic",
}

// File is an uploaded receipt whose content type has been checked.
type File struct {
	Data      []byte
	MIME      string
	Extension string
}

func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

// Sniff reads at most maxBytes from r and detects the content type from the
// bytes themselves. Oversized or unsupported files are validation errors.
func Sniff(r io.Reader, maxBytes int64) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("receipt is empty")
	}
	if int64(len(data)) > maxBytes {
		return nil, apperrors.Validationf("receipt must be at most %d bytes", maxBytes)
	}

	mt := mimetype.Detect(data)
	for _, allowed := range Allowed {
		if mt.Is(allowed) {
			return &File{Data: data, MIME: allowed, Extension: mt.Extension()}, nil
		}
	}
	return nil, apperrors.Validationf("receipt type %s is not supported", mt.String())
}

// objectKey spreads files over two-character prefixes and keeps a readable name.
func objectKey(id uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_").Replace(base)
	if base == "" || base == "." {
		base = "receipt"
	}
	s := id.String()
	return fmt.Sprintf("%s/%s_%s%s", s[:2], s, base, strings.ToLower(ext))
}
