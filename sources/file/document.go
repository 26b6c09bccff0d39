// Package file reads a single file into a document rules can inspect.
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// headerSize is how much of a file filetype needs to sniff its kind.
const headerSize = 262

var (
	// ErrBinary means the file is not text.
	ErrBinary = errors.New("binary file")

	// ErrTooLarge means the file exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")
)

// Document is the text content of one file.
type Document struct {
	Path string

	// Symlink is the link path when Path was reached through one.
	Symlink string

	Content string
}

// Read loads path as UTF-8 text. maxSize of zero disables the size check.
func Read(path string, maxSize int64) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	if maxSize > 0 {
		info, err := f.Stat()
		if err != nil {
			return Document{}, err
		}
		if info.Size() > maxSize {
			return Document{}, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, info.Size(), maxSize)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return Document{}, err
	}
	if IsBinary(data) {
		return Document{}, ErrBinary
	}
	return Document{Path: path, Content: string(data)}, nil
}

// IsBinary sniffs data for a known binary format, falling back to a UTF-8
// validity check for formats filetype does not recognize.
func IsBinary(data []byte) bool {
	head := data
	if len(head) > headerSize {
		head = head[:headerSize]
	}
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return true
	}
	return !utf8.Valid(data)
}
