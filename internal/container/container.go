// Package container reads and writes the zip archive that holds the parts
// of a spreadsheet package.
package container

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrInvalidArchive         = errors.New("xlsxio: invalid archive")
	ErrUnsupportedCompression = errors.New("xlsxio: unsupported compression")
	ErrEncrypted              = errors.New("xlsxio: encrypted document")
	ErrLegacyFormat           = errors.New("xlsxio: legacy compound document")
	ErrLimitExceeded          = errors.New("xlsxio: limit exceeded")
)

// Compression selects how entries are stored when writing.
type Compression uint8

const (
	Deflate Compression = iota
	Store
	ZSTD
	LZ4
	Brotli
)

func (c Compression) String() string {
	switch c {
	case Deflate:
		return "deflate"
	case Store:
		return "store"
	case ZSTD:
		return "zstd"
	case LZ4:
		return "lz4"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a name such as "deflate" to its Compression.
func ParseCompression(name string) (Compression, error) {
	for c := Deflate; c <= Brotli; c++ {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, name)
}

// ZIP method ids. ZSTD uses the registered WinZip id; LZ4 and Brotli use
// private ids that only this package understands.
const (
	methodStore   uint16 = 0
	methodDeflate uint16 = 8
	methodZSTD    uint16 = 93
	methodLZ4     uint16 = 0x4C34
	methodBrotli  uint16 = 0x4252
)

// DefaultLevel asks every codec for its default level.
const DefaultLevel = -1

// Limits bound what Open accepts. Zero fields are not checked.
type Limits struct {
	MaxEntries           int
	MaxEntrySize         uint64
	MaxTotalUncompressed uint64
}

// ValidName reports whether name is a clean relative part name: no
// absolute paths, no backslashes, no "." or ".." segments.
func ValidName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty entry name", ErrInvalidArchive)
	}
	if strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: absolute entry name %q", ErrInvalidArchive, name)
	}
	if strings.Contains(name, "\\") {
		return fmt.Errorf("%w: backslash in entry name %q", ErrInvalidArchive, name)
	}
	clean := path.Clean(name)
	if clean != strings.TrimSuffix(name, "/") || clean == "." {
		return fmt.Errorf("%w: unclean entry name %q", ErrInvalidArchive, name)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: entry name escapes archive %q", ErrInvalidArchive, name)
	}
	return nil
}
