package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/richardlehane/mscfb"
)

// Function variables for testing injection.
var (
	zipOpen = func(zf *zip.File) (io.ReadCloser, error) { return zf.Open() }
	readAll = io.ReadAll
)

var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Archive is an opened package. Entries can be read in any order and
// concurrently.
type Archive struct {
	entries []*Entry
	byName  map[string]*Entry
}

// Entry is one file of the archive.
type Entry struct {
	Name           string
	Size           uint64
	CompressedSize uint64
	Method         uint16

	file  *zip.File
	limit uint64
}

// Open reads the central directory of the archive in r. Compound documents
// are recognized up front and rejected with ErrEncrypted or ErrLegacyFormat.
func Open(r io.ReaderAt, size int64, limits Limits) (*Archive, error) {
	head := make([]byte, len(cfbSignature))
	if n, _ := r.ReadAt(head, 0); n == len(head) && bytes.Equal(head, cfbSignature) {
		return nil, compoundError(r, size)
	}
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	zr.RegisterDecompressor(methodZSTD, zstd.ZipDecompressor())
	zr.RegisterDecompressor(methodLZ4, func(r io.Reader) io.ReadCloser { return io.NopCloser(lz4.NewReader(r)) })
	zr.RegisterDecompressor(methodBrotli, func(r io.Reader) io.ReadCloser { return io.NopCloser(brotli.NewReader(r)) })

	a := &Archive{byName: make(map[string]*Entry, len(zr.File))}
	var total uint64
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if err := ValidName(zf.Name); err != nil {
			return nil, err
		}
		if _, dup := a.byName[zf.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q", ErrInvalidArchive, zf.Name)
		}
		if limits.MaxEntries > 0 && len(a.entries) >= limits.MaxEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrLimitExceeded, limits.MaxEntries)
		}
		if limits.MaxEntrySize > 0 && zf.UncompressedSize64 > limits.MaxEntrySize {
			return nil, fmt.Errorf("%w: entry %q declares %d bytes", ErrLimitExceeded, zf.Name, zf.UncompressedSize64)
		}
		total += zf.UncompressedSize64
		if limits.MaxTotalUncompressed > 0 && total > limits.MaxTotalUncompressed {
			return nil, fmt.Errorf("%w: archive expands beyond %d bytes", ErrLimitExceeded, limits.MaxTotalUncompressed)
		}
		limit := zf.UncompressedSize64
		if limits.MaxEntrySize > 0 && limits.MaxEntrySize < limit {
			limit = limits.MaxEntrySize
		}
		e := &Entry{
			Name:           zf.Name,
			Size:           zf.UncompressedSize64,
			CompressedSize: zf.CompressedSize64,
			Method:         zf.Method,
			file:           zf,
			limit:          limit,
		}
		a.entries = append(a.entries, e)
		a.byName[e.Name] = e
	}
	return a, nil
}

// compoundError classifies an OLE compound file. Encrypted packages carry
// EncryptionInfo and EncryptedPackage streams; anything else is a legacy
// binary workbook.
func compoundError(r io.ReaderAt, size int64) error {
	doc, err := mscfb.New(io.NewSectionReader(r, 0, size))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLegacyFormat, err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptedPackage", "EncryptionInfo":
			return ErrEncrypted
		}
	}
	return ErrLegacyFormat
}

// Entries lists the file entries in archive order.
func (a *Archive) Entries() []*Entry { return a.entries }

// Entry returns the entry with the given name.
func (a *Archive) Entry(name string) (*Entry, bool) {
	e, ok := a.byName[name]
	return e, ok
}

// Open streams the entry's uncompressed bytes. Reading past the declared
// size fails with ErrLimitExceeded.
func (e *Entry) Open() (io.ReadCloser, error) {
	rc, err := zipOpen(e.file)
	if err != nil {
		if errors.Is(err, zip.ErrAlgorithm) {
			return nil, fmt.Errorf("%w: %s uses method %d", ErrUnsupportedCompression, e.Name, e.Method)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, e.Name, err)
	}
	return &limitedReader{rc: rc, name: e.Name, left: e.limit}, nil
}

// ReadAll returns the entry's uncompressed bytes.
func (e *Entry) ReadAll() ([]byte, error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := readAll(rc)
	if err != nil {
		return nil, err
	}
	return b, nil
}

type limitedReader struct {
	rc   io.ReadCloser
	name string
	left uint64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.left == 0 {
		// One extra byte tells a truthful entry from one that lied.
		var extra [1]byte
		n, err := l.rc.Read(extra[:])
		if n > 0 || errors.Is(err, zip.ErrFormat) {
			return 0, fmt.Errorf("%w: %s expands beyond its declared size", ErrLimitExceeded, l.name)
		}
		if err == nil || errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, l.name, err)
	}
	if uint64(len(p)) > l.left {
		p = p[:l.left]
	}
	n, err := l.rc.Read(p)
	l.left -= uint64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, l.name, err)
	}
	return n, err
}

func (l *limitedReader) Close() error { return l.rc.Close() }
