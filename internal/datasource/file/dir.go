// Package file implements a local directory data source.
package file

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wrangle/internal/datasource"
)

// Dir lists the regular files directly inside a directory, following
// symlinks. A file is a candidate when its name contains a '.' and does not
// start with one. Dangling links and links to directories are skipped.
type Dir struct {
	dir     string
	pattern string
}

// NewDir returns a Dir bound to dir. A non-empty pattern restricts the
// listing to base names matching it (filepath.Match syntax, e.g. "*.csv").
func NewDir(dir, pattern string) *Dir { return &Dir{dir: dir, pattern: pattern} }

var _ datasource.Source = (*Dir)(nil)

// List returns the candidate files sorted by full path.
func (d *Dir) List(ctx context.Context) ([]datasource.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, &datasource.AccessError{Op: "list", Locator: d.dir, Code: code(err), Err: err}
	}

	var refs []datasource.Ref
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.Contains(name, ".") || !d.isRegular(e) {
			continue
		}
		if d.pattern != "" {
			ok, err := filepath.Match(d.pattern, name)
			if err != nil {
				return nil, &datasource.AccessError{Op: "list", Locator: d.dir, Code: datasource.CodeUnknown, Err: err}
			}
			if !ok {
				continue
			}
		}
		refs = append(refs, datasource.Ref{
			Locator: filepath.Join(d.dir, name),
			Ext:     strings.ToLower(filepath.Ext(name)),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Locator < refs[j].Locator })
	return refs, nil
}

func (d *Dir) isRegular(e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.Type().IsRegular()
	}
	fi, err := os.Stat(filepath.Join(d.dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}

// Open opens the referenced file. A canceled context short-circuits
// without touching the filesystem.
func (d *Dir) Open(ctx context.Context, ref datasource.Ref) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(ref.Locator)
	if err != nil {
		return nil, &datasource.AccessError{Op: "open", Locator: ref.Locator, Code: code(err), Err: err}
	}
	return f, nil
}

// Key is the file name without its final extension.
func (d *Dir) Key(ref datasource.Ref) string {
	base := filepath.Base(ref.Locator)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func code(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return datasource.CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return datasource.CodePermissionDenied
	default:
		return datasource.CodeUnknown
	}
}
