package panels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png" // register PNG decoder
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Loader turns an asset address into a Visual. Load is called from a
// background goroutine and must not touch Manager state. Failures should wrap
// ErrAssetNotFound or ErrLoadFailed.
type Loader interface {
	Load(ctx context.Context, address string) (*Visual, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, address string) (*Visual, error)

// Load calls f(ctx, address).
func (f LoaderFunc) Load(ctx context.Context, address string) (*Visual, error) {
	return f(ctx, address)
}

// FSLoader loads panel visuals from image files in an fs.FS. The address is
// the file path without extension; Extensions are tried in order.
type FSLoader struct {
	FS         fs.FS
	Extensions []string
}

var defaultImageExtensions = []string{".png", ".webp"}

// NewFSLoader returns an FSLoader reading PNG and WebP files from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{FS: fsys, Extensions: defaultImageExtensions}
}

// Load implements Loader.
func (l *FSLoader) Load(ctx context.Context, address string) (*Visual, error) {
	data, name, err := l.read(address)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailed, name, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrLoadFailed, name, err)
	}
	root := NewImageNode(address, ebiten.NewImageFromImage(img))
	return NewVisual(address, root), nil
}

func (l *FSLoader) read(address string) ([]byte, string, error) {
	if path.Ext(address) != "" {
		return l.readFile(address)
	}
	exts := l.Extensions
	if len(exts) == 0 {
		exts = defaultImageExtensions
	}
	for _, ext := range exts {
		data, name, err := l.readFile(address + ext)
		if errors.Is(err, ErrAssetNotFound) {
			continue
		}
		return data, name, err
	}
	return nil, "", fmt.Errorf("%w: %q (tried %s)", ErrAssetNotFound, address, strings.Join(exts, ", "))
}

func (l *FSLoader) readFile(name string) ([]byte, string, error) {
	data, err := fs.ReadFile(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, name, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
	}
	if err != nil {
		return nil, name, fmt.Errorf("%w: read %s: %w", ErrLoadFailed, name, err)
	}
	return data, name, nil
}
