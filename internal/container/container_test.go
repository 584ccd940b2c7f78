package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/klauspost/compress/zip"
)

func buildArchive(t *testing.T, c Compression, level int, entries map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, c, level)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range order {
		if err := w.Add(name, []byte(entries[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func openBytes(t *testing.T, b []byte, limits Limits) (*Archive, error) {
	t.Helper()
	return Open(bytes.NewReader(b), int64(len(b)), limits)
}

func TestRoundTripAllCompressions(t *testing.T) {
	entries := map[string]string{
		"[Content_Types].xml":      `<Types/>`,
		"xl/workbook.xml":          strings.Repeat("<sheet/>", 200),
		"xl/worksheets/sheet1.xml": "<worksheet/>",
	}
	order := []string{"[Content_Types].xml", "xl/workbook.xml", "xl/worksheets/sheet1.xml"}
	cases := []struct {
		c      Compression
		level  int
		method uint16
	}{
		{Deflate, DefaultLevel, methodDeflate},
		{Deflate, 9, methodDeflate},
		{Store, DefaultLevel, methodStore},
		{ZSTD, DefaultLevel, methodZSTD},
		{ZSTD, 19, methodZSTD},
		{LZ4, DefaultLevel, methodLZ4},
		{LZ4, 4, methodLZ4},
		{Brotli, DefaultLevel, methodBrotli},
		{Brotli, 11, methodBrotli},
	}
	for _, tc := range cases {
		t.Run(tc.c.String(), func(t *testing.T) {
			b := buildArchive(t, tc.c, tc.level, entries, order...)
			a, err := openBytes(t, b, Limits{})
			if err != nil {
				t.Fatal(err)
			}
			if len(a.Entries()) != len(order) {
				t.Fatalf("entries=%d", len(a.Entries()))
			}
			for i, e := range a.Entries() {
				if e.Name != order[i] {
					t.Fatalf("entry %d = %q", i, e.Name)
				}
				if e.Method != tc.method {
					t.Fatalf("%s method=%d want %d", e.Name, e.Method, tc.method)
				}
				got, err := e.ReadAll()
				if err != nil {
					t.Fatal(err)
				}
				if string(got) != entries[e.Name] {
					t.Fatalf("%s content mismatch", e.Name)
				}
			}
			if _, ok := a.Entry("xl/workbook.xml"); !ok {
				t.Fatal("lookup by name failed")
			}
			if _, ok := a.Entry("missing.xml"); ok {
				t.Fatal("unexpected entry")
			}
		})
	}
}

func TestLZ4FrameFollowsLocalHeader(t *testing.T) {
	entries := map[string]string{"empty.xml": "", "a.xml": "<a/>", "b.xml": strings.Repeat("<b/>", 64)}
	order := []string{"empty.xml", "a.xml", "b.xml"}
	b := buildArchive(t, LZ4, DefaultLevel, entries, order...)
	if !bytes.HasPrefix(b, []byte("PK\x03\x04")) {
		t.Fatalf("archive starts with % x", b[:4])
	}

	// The standard zip reader finds every body even though it cannot
	// decompress the private method.
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range zr.File {
		if _, err := f.DataOffset(); err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
	}

	a, err := openBytes(t, b, Limits{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range a.Entries() {
		got, err := e.ReadAll()
		if err != nil {
			t.Fatalf("%s: %v", e.Name, err)
		}
		if string(got) != entries[e.Name] {
			t.Fatalf("%s = %q", e.Name, got)
		}
	}
}

func TestWriterDeterministic(t *testing.T) {
	entries := map[string]string{"a.xml": "<a/>"}
	one := buildArchive(t, Deflate, DefaultLevel, entries, "a.xml")
	two := buildArchive(t, Deflate, DefaultLevel, entries, "a.xml")
	if !bytes.Equal(one, two) {
		t.Fatal("identical input produced different archives")
	}
}

func TestParseCompression(t *testing.T) {
	for c := Deflate; c <= Brotli; c++ {
		got, err := ParseCompression(strings.ToUpper(c.String()))
		if err != nil || got != c {
			t.Fatalf("ParseCompression(%s) = %v, %v", c, got, err)
		}
	}
	if _, err := ParseCompression("rar"); !errors.Is(err, ErrUnsupportedCompression) {
		t.Fatalf("err=%v", err)
	}
	if _, err := NewWriter(io.Discard, Compression(42), DefaultLevel); !errors.Is(err, ErrUnsupportedCompression) {
		t.Fatalf("err=%v", err)
	}
}

func TestValidName(t *testing.T) {
	good := []string{"xl/workbook.xml", "[Content_Types].xml", "_rels/.rels", "xl/"}
	for _, name := range good {
		if err := ValidName(name); err != nil {
			t.Fatalf("%q: %v", name, err)
		}
	}
	bad := []string{"", "/abs.xml", `xl\workbook.xml`, "xl/../x.xml", "../x.xml", "./a.xml", "xl//a.xml", "."}
	for _, name := range bad {
		if err := ValidName(name); !errors.Is(err, ErrInvalidArchive) {
			t.Fatalf("%q: err=%v", name, err)
		}
	}
}

func TestWriterRejectsBadNames(t *testing.T) {
	w, err := NewWriter(io.Discard, Store, DefaultLevel)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Add("a.xml", nil); err != nil {
		t.Fatal(err)
	}
	if err := w.Add("a.xml", nil); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("duplicate: err=%v", err)
	}
	if _, err := w.Create("../evil"); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("escape: err=%v", err)
	}
}

func TestOpenLimits(t *testing.T) {
	entries := map[string]string{"a.xml": "0123456789", "b.xml": "0123456789"}
	b := buildArchive(t, Deflate, DefaultLevel, entries, "a.xml", "b.xml")

	if _, err := openBytes(t, b, Limits{MaxEntries: 1}); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("MaxEntries: err=%v", err)
	}
	if _, err := openBytes(t, b, Limits{MaxEntrySize: 9}); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("MaxEntrySize: err=%v", err)
	}
	if _, err := openBytes(t, b, Limits{MaxTotalUncompressed: 15}); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("MaxTotalUncompressed: err=%v", err)
	}
	if _, err := openBytes(t, b, Limits{MaxEntries: 2, MaxEntrySize: 10, MaxTotalUncompressed: 20}); err != nil {
		t.Fatalf("limits at the boundary: %v", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := openBytes(t, []byte("not a zip at all"), Limits{}); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("err=%v", err)
	}
}

func rawArchive(t *testing.T, fh *zip.FileHeader, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateRaw(fh)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEntryExpandsBeyondDeclaredSize(t *testing.T) {
	body := []byte("0123456789")
	b := rawArchive(t, &zip.FileHeader{
		Name:               "lie.xml",
		Method:             zip.Store,
		CompressedSize64:   uint64(len(body)),
		UncompressedSize64: 4,
	}, body)
	a, err := openBytes(t, b, Limits{})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := a.Entry("lie.xml")
	if _, err := e.ReadAll(); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("err=%v", err)
	}
}

func TestEntryUnknownMethod(t *testing.T) {
	b := rawArchive(t, &zip.FileHeader{Name: "odd.xml", Method: 99, CompressedSize64: 3, UncompressedSize64: 3}, []byte("abc"))
	a, err := openBytes(t, b, Limits{})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := a.Entry("odd.xml")
	if _, err := e.Open(); !errors.Is(err, ErrUnsupportedCompression) {
		t.Fatalf("err=%v", err)
	}
}

func TestOpenRejectsBadEntryNames(t *testing.T) {
	b := rawArchive(t, &zip.FileHeader{Name: "../x.xml", Method: zip.Store}, nil)
	if _, err := openBytes(t, b, Limits{}); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("err=%v", err)
	}
}

func TestInjectedFailures(t *testing.T) {
	boom := errors.New("boom")

	origCreate := zipCreate
	zipCreate = func(*zip.Writer, *zip.FileHeader) (io.Writer, error) { return nil, boom }
	w, _ := NewWriter(io.Discard, Deflate, DefaultLevel)
	if err := w.Add("a.xml", nil); !errors.Is(err, boom) {
		t.Fatalf("create: err=%v", err)
	}
	zipCreate = origCreate

	origClose := zipClose
	zipClose = func(*zip.Writer) error { return boom }
	w, _ = NewWriter(io.Discard, Deflate, DefaultLevel)
	if err := w.Close(); !errors.Is(err, boom) {
		t.Fatalf("close: err=%v", err)
	}
	zipClose = origClose

	b := buildArchive(t, Store, DefaultLevel, map[string]string{"a.xml": "x"}, "a.xml")
	a, err := openBytes(t, b, Limits{})
	if err != nil {
		t.Fatal(err)
	}
	e, _ := a.Entry("a.xml")

	origOpen := zipOpen
	zipOpen = func(*zip.File) (io.ReadCloser, error) { return nil, boom }
	if _, err := e.ReadAll(); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("open: err=%v", err)
	}
	zipOpen = origOpen

	origReadAll := readAll
	readAll = func(io.Reader) ([]byte, error) { return nil, boom }
	if _, err := e.ReadAll(); !errors.Is(err, boom) {
		t.Fatalf("readAll: err=%v", err)
	}
	readAll = origReadAll
}

// compoundFile builds a minimal version 3 compound file whose root storage
// holds a single empty stream.
func compoundFile(stream string) []byte {
	const (
		sector     = 512
		endOfChain = 0xFFFFFFFE
		freeSect   = 0xFFFFFFFF
		fatSect    = 0xFFFFFFFD
		noStream   = 0xFFFFFFFF
	)
	b := make([]byte, 3*sector)
	le := binary.LittleEndian
	copy(b, cfbSignature)
	le.PutUint16(b[24:], 0x003E)
	le.PutUint16(b[26:], 0x0003)
	le.PutUint16(b[28:], 0xFFFE)
	le.PutUint16(b[30:], 9)
	le.PutUint16(b[32:], 6)
	le.PutUint32(b[44:], 1)
	le.PutUint32(b[48:], 1)
	le.PutUint32(b[56:], 0x1000)
	le.PutUint32(b[60:], endOfChain)
	le.PutUint32(b[68:], endOfChain)
	le.PutUint32(b[76:], 0)
	for i := 1; i < 109; i++ {
		le.PutUint32(b[76+4*i:], freeSect)
	}

	fat := b[sector : 2*sector]
	le.PutUint32(fat[0:], fatSect)
	le.PutUint32(fat[4:], endOfChain)
	for i := 2; i < sector/4; i++ {
		le.PutUint32(fat[4*i:], freeSect)
	}

	dir := b[2*sector:]
	entry := func(i int, name string, typ byte, child, start uint32) {
		e := dir[i*128 : (i+1)*128]
		units := utf16.Encode([]rune(name))
		for j, u := range units {
			le.PutUint16(e[2*j:], u)
		}
		le.PutUint16(e[64:], uint16(2*(len(units)+1)))
		e[66] = typ
		e[67] = 1
		le.PutUint32(e[68:], noStream)
		le.PutUint32(e[72:], noStream)
		le.PutUint32(e[76:], child)
		le.PutUint32(e[116:], start)
	}
	entry(0, "Root Entry", 5, 1, endOfChain)
	entry(1, stream, 2, noStream, endOfChain)
	for i := 2; i < 4; i++ {
		e := dir[i*128:]
		le.PutUint32(e[68:], noStream)
		le.PutUint32(e[72:], noStream)
		le.PutUint32(e[76:], noStream)
	}
	return b
}

func TestCompoundDocuments(t *testing.T) {
	if _, err := openBytes(t, compoundFile("EncryptionInfo"), Limits{}); !errors.Is(err, ErrEncrypted) {
		t.Fatalf("encrypted: err=%v", err)
	}
	if _, err := openBytes(t, compoundFile("Workbook"), Limits{}); !errors.Is(err, ErrLegacyFormat) {
		t.Fatalf("legacy: err=%v", err)
	}
	junk := append(append([]byte{}, cfbSignature...), make([]byte, 64)...)
	if _, err := openBytes(t, junk, Limits{}); !errors.Is(err, ErrLegacyFormat) {
		t.Fatalf("truncated: err=%v", err)
	}
}
