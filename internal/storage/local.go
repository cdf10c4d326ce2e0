// Package storage keeps uploaded product images on the local filesystem.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"storefront/internal/domain"
)

// PublicPrefix is the URL path the router serves the upload directory under.
const PublicPrefix = "/uploads"

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// allowedTypes are the detected content types accepted, keyed to the
// extension the stored file gets.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniffLen is how much of the upload is inspected for its content type.
const sniffLen = 3072

// Local writes files into dir and returns URLs rooted at urlHost.
type Local struct {
	dir     string
	urlHost string
	logger  *log.Logger
}

func NewLocal(dir, urlHost string, logger *log.Logger) (*Local, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir, urlHost: strings.TrimRight(urlHost, "/"), logger: logger}, nil
}

func (s *Local) Dir() string {
	return s.dir
}

// Save stores r under a fresh name and returns the public URL. Both the
// extension of originalName and the sniffed content must be an image; the
// stored extension follows the content.
func (s *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, ext)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	detected := mimetype.Detect(head)
	ext, ok := contentExt(detected)
	if !ok {
		s.logger.Printf("storage: rejected upload name=%q detected=%s", originalName, detected)
		return "", fmt.Errorf("%w: file content is %s, not an image", domain.ErrValidation, detected)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	n, err := io.Copy(f, br)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	s.logger.Printf("storage: saved file=%s bytes=%d", name, n)
	return s.urlHost + PublicPrefix + "/" + name, nil
}

// contentExt walks up the detected type's parents so subtypes such as APNG
// are stored as their base image type.
func contentExt(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		for mime, ext := range allowedTypes {
			if m.Is(mime) {
				return ext, true
			}
		}
	}
	return "", false
}
