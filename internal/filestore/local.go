package filestore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"actionflow/backend/internal/apperr"
)

// Local keeps uploads under Root on the local disk.
type Local struct {
	Root  string
	Rules Rules
	Now   func() time.Time
}

func NewLocal(root string, rules Rules) *Local {
	return &Local{Root: root, Rules: rules, Now: time.Now}
}

func (l *Local) Save(ctx context.Context, orgUniqueID, kind, filename string, size int64, r io.Reader) (string, error) {
	if err := validKind(kind); err != nil {
		return "", err
	}
	if err := l.Rules.Check(filename, size); err != nil {
		return "", err
	}

	name := ObjectName(orgUniqueID, kind, filename, l.Now())
	full := filepath.Join(l.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", apperr.Infrastructure("store upload", err)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperr.Infrastructure("store upload", err)
	}

	// the declared size is the client's word; enforce the limit on the bytes
	limit := l.Rules.MaxBytes
	if limit <= 0 {
		limit = 1<<63 - 1
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return "", apperr.Infrastructure("store upload", err)
	}
	if n > limit {
		os.Remove(full)
		return "", apperr.Validation("file exceeds %d MB", limit/(1024*1024))
	}
	return name, nil
}

func (l *Local) Remove(ctx context.Context, stored string) error {
	clean := path.Clean("/" + stored)
	if clean == "/" || strings.Contains(stored, "..") {
		return apperr.Validation("invalid stored path")
	}
	err := os.Remove(filepath.Join(l.Root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Infrastructure("remove upload", err)
	}
	return nil
}
