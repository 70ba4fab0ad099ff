// Package loader reads raw 8086 code segment images.
package loader

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// MaxSize is the largest image accepted, in bytes: one 64 KiB code segment
// addressable from CS:0000.
const MaxSize = 65535

// ErrTooLarge is returned for images longer than MaxSize.
var ErrTooLarge = errors.New("image exceeds maximum size")

// Program is a loaded code segment image.
type Program struct {
	// Name identifies the source, usually the file's base name.
	Name string
	// Data contains the instruction bytes.
	Data []byte
}

// Load reads a raw binary image from a file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer func() { _ = f.Close() }()

	return Read(filepath.Base(path), f)
}

// Read reads a raw binary image from r.
func Read(name string, r io.Reader) (*Program, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %s", name)
	}

	if len(data) > MaxSize {
		return nil, errors.Wrapf(ErrTooLarge, "%s is larger than %d bytes", name, MaxSize)
	}

	return &Program{Name: name, Data: data}, nil
}
