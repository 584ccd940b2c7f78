package xlsxio

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logicossoftware/go-xlsxio/internal/container"
	"github.com/logicossoftware/go-xlsxio/internal/parts"
	"github.com/logicossoftware/go-xlsxio/model"
)

func encodeBytes(t *testing.T, wb *model.Workbook, opts ...WriteOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, wb, opts...))
	return buf.Bytes()
}

func decodeBytes(t *testing.T, data []byte, opts ...ReadOption) (*model.Workbook, []Warning) {
	t.Helper()
	wb, warns, err := Decode(bytes.NewReader(data), opts...)
	require.NoError(t, err)
	return wb, warns
}

func roundTrip(t *testing.T, wb *model.Workbook, opts ...WriteOption) *model.Workbook {
	t.Helper()
	got, warns := decodeBytes(t, encodeBytes(t, wb, opts...))
	require.Empty(t, warns)
	return got
}

// entryText returns the uncompressed content of one archive entry.
func entryText(t *testing.T, data []byte, name string) string {
	t.Helper()
	a, err := container.Open(bytes.NewReader(data), int64(len(data)), defaultLimits().container())
	require.NoError(t, err)
	e, ok := a.Entry(name)
	require.True(t, ok, "entry %s missing", name)
	b, err := e.ReadAll()
	require.NoError(t, err)
	return string(b)
}

func entryNames(t *testing.T, data []byte) []string {
	t.Helper()
	a, err := container.Open(bytes.NewReader(data), int64(len(data)), defaultLimits().container())
	require.NoError(t, err)
	var names []string
	for _, e := range a.Entries() {
		names = append(names, e.Name)
	}
	return names
}

// zipEntries writes entries in the given order into a deflate archive.
func zipEntries(t *testing.T, entries [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := container.NewWriter(&buf, container.Deflate, container.DefaultLevel)
	require.NoError(t, err)
	for _, e := range entries {
		require.NoError(t, w.Add(e[0], []byte(e[1])))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func relsXML(rels ...parts.Relationship) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, parts.NSPackageRels)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"`, r.ID, r.Type, r.Target)
		if r.TargetMode != "" {
			fmt.Fprintf(&b, ` TargetMode="%s"`, r.TargetMode)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// handPackage builds a minimal package around one worksheet body. extra
// entries are appended after the required ones.
func handPackage(t *testing.T, sheetXML string, extra ...[2]string) []byte {
	t.Helper()
	entries := [][2]string{
		{"_rels/.rels", relsXML(parts.Relationship{ID: "rId1", Type: parts.RelOfficeDocument, Target: "xl/workbook.xml"})},
		{"xl/_rels/workbook.xml.rels", relsXML(parts.Relationship{ID: "rId1", Type: parts.RelWorksheet, Target: "worksheets/sheet1.xml"})},
		{"xl/workbook.xml", fmt.Sprintf(`<workbook xmlns:r="%s"><sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets></workbook>`, parts.NSRelationships)},
		{"xl/worksheets/sheet1.xml", sheetXML},
	}
	return zipEntries(t, append(entries, extra...))
}
