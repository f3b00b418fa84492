package fileutil

import (
	"errors"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

// FileExists checks if a file exists at the given path.
//
// Returns true if the file exists, false if it doesn't, and an error if the file's
// existence cannot be determined.
func FileExists(fs afero.Fs, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EndsWithNewline reports whether the file is empty or its last byte is a
// line feed.
func EndsWithNewline(fs afero.Fs, path string) (bool, error) {
	f, err := fs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return last[0] == '\n', nil
}

// SanitizeFilename makes name safe to use as a single path element.
//
// Path separators and NUL become underscores, other control characters are
// dropped, and surrounding spaces and trailing dots are trimmed.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, name)

	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ".")
	if name == "" || name == ".." {
		return ""
	}
	return name
}
