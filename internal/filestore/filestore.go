// Package filestore stores complaint and proof images.
//
// Stored objects are named
//
//	<org_unique_id>/<kind>/<YYYYmmddHHMMSS>_<8 hex>_<sanitised name>
//
// and callers treat the returned path as opaque.
package filestore

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/config"

	"github.com/google/uuid"
)

type Store interface {
	// Save validates and stores one upload, returning its path or URL.
	Save(ctx context.Context, orgUniqueID, kind, filename string, size int64, r io.Reader) (string, error)
	// Remove deletes a stored object. Missing objects are not an error.
	Remove(ctx context.Context, stored string) error
}

// Rules are the upload constraints shared by every store.
type Rules struct {
	MaxBytes   int64
	Extensions []string
}

func DefaultRules() Rules {
	return Rules{MaxBytes: config.DefaultMaxUploadBytes, Extensions: config.DefaultImageExtensions}
}

// Check validates the client-supplied name and declared size.
func (r Rules) Check(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperr.Validation("no file selected")
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	allowed := false
	for _, e := range r.Extensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.Validation("file type not allowed, use one of: %s", strings.Join(r.Extensions, ", "))
	}
	if r.MaxBytes > 0 && size > r.MaxBytes {
		return apperr.Validation("file exceeds %d MB", r.MaxBytes/(1024*1024))
	}
	return nil
}

func validKind(kind string) error {
	if kind != config.ComplaintUploadSubdir && kind != config.ProofUploadSubdir {
		return apperr.Validation("unknown upload kind %q", kind)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName reduces a client file name to a safe base name.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// ObjectName builds the stored path of a new upload.
func ObjectName(orgUniqueID, kind, filename string, at time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return path.Join(orgUniqueID, kind, at.UTC().Format("20060102150405")+"_"+hex+"_"+SanitizeName(filename))
}
