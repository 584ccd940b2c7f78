package container

import (
	"fmt"
	"io"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Function variables for testing injection.
var (
	zipCreate = func(zw *zip.Writer, fh *zip.FileHeader) (io.Writer, error) { return zw.CreateHeader(fh) }
	zipClose  = func(zw *zip.Writer) error { return zw.Close() }
	lz4Close  = func(w *lz4.Writer) error { return w.Close() }
)

// epoch stamps every entry so identical workbooks produce identical bytes.
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Writer streams entries into a zip archive. Entries are written one at a
// time; Create invalidates the writer returned by the previous call.
type Writer struct {
	zw     *zip.Writer
	method uint16
	names  map[string]struct{}
}

// NewWriter starts an archive on w. level is codec specific; DefaultLevel
// picks each codec's default.
func NewWriter(w io.Writer, c Compression, level int) (*Writer, error) {
	zw := zip.NewWriter(w)
	var method uint16
	switch c {
	case Store:
		method = methodStore
	case Deflate:
		method = methodDeflate
		if level < flate.HuffmanOnly || level > flate.BestCompression {
			level = flate.DefaultCompression
		}
		zw.RegisterCompressor(methodDeflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	case ZSTD:
		method = methodZSTD
		var opts []zstd.EOption
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		zw.RegisterCompressor(methodZSTD, zstd.ZipCompressor(opts...))
	case LZ4:
		method = methodLZ4
		zw.RegisterCompressor(methodLZ4, func(out io.Writer) (io.WriteCloser, error) {
			lw := lz4.NewWriter(out)
			if err := lw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
				return nil, err
			}
			return &lz4WriteCloser{w: lw}, nil
		})
	case Brotli:
		method = methodBrotli
		if level < brotli.BestSpeed || level > brotli.BestCompression {
			level = brotli.DefaultCompression
		}
		zw.RegisterCompressor(methodBrotli, func(out io.Writer) (io.WriteCloser, error) {
			return brotli.NewWriterLevel(out, level), nil
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
	return &Writer{zw: zw, method: method, names: make(map[string]struct{})}, nil
}

func lz4Level(level int) lz4.CompressionLevel {
	if level <= 0 {
		return lz4.Fast
	}
	if level > 9 {
		level = 9
	}
	return lz4.CompressionLevel(1 << (8 + level))
}

// lz4WriteCloser defers the frame header until the first Write or Close.
// zip.Writer builds the compressor before it writes the local file header,
// so nothing may reach the output from the constructor.
type lz4WriteCloser struct {
	w       *lz4.Writer
	started bool
}

func (l *lz4WriteCloser) Write(p []byte) (int, error) {
	l.started = true
	return l.w.Write(p)
}

func (l *lz4WriteCloser) Close() error {
	if !l.started {
		// An empty entry still needs a frame header to decode.
		if _, err := l.Write(nil); err != nil {
			return err
		}
	}
	return lz4Close(l.w)
}

// Create starts a new entry and returns the writer for its contents.
func (w *Writer) Create(name string) (io.Writer, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	if _, dup := w.names[name]; dup {
		return nil, fmt.Errorf("%w: duplicate entry %q", ErrInvalidArchive, name)
	}
	w.names[name] = struct{}{}
	fh := &zip.FileHeader{Name: name, Method: w.method, Modified: epoch}
	return zipCreate(w.zw, fh)
}

// Add writes a whole entry.
func (w *Writer) Add(name string, data []byte) error {
	dst, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = dst.Write(data)
	return err
}

// Close finishes the central directory. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	return zipClose(w.zw)
}
