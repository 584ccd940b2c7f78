package xmlstream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src *Source) []Event {
	t.Helper()
	var out []Event
	for ev, err := range src.Events() {
		require.NoError(t, err)
		out = append(out, ev)
	}
	return out
}

func TestSourceEvents(t *testing.T) {
	in := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"
  xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
  xmlns:x14ac="http://schemas.microsoft.com/office/spreadsheetml/2009/9/ac">
<row r="1" x14ac:dyDescent="0.25"><c r="A1"><v>1</v></c></row><drawing r:id="rId1"/><!-- note --></worksheet>`
	evs := collect(t, NewSource(strings.NewReader(in)))

	var opens []Node
	for _, ev := range evs {
		if ev.Kind == Open {
			opens = append(opens, ev.Node)
		}
	}
	require.Len(t, opens, 5)
	require.Equal(t, "worksheet", opens[0].Name)
	require.Equal(t, 1, opens[0].Depth)
	require.Empty(t, opens[0].Attrs)
	require.Equal(t, "row", opens[1].Name)
	require.Equal(t, "0.25", opens[1].Attr("x14ac:dyDescent"))
	require.Equal(t, 1, opens[1].Int("r", 0))
	require.Equal(t, 4, opens[3].Depth)
	require.Equal(t, "rId1", opens[4].Attr("r:id"))

	last := evs[len(evs)-1]
	require.Equal(t, Close, last.Kind)
	require.Equal(t, "worksheet", last.Name)
}

func TestSourceSyntaxError(t *testing.T) {
	src := NewSource(strings.NewReader("<a>\n<b></a>"))
	var err error
	for {
		if _, err = src.Next(); err != nil {
			break
		}
	}
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 2, se.Line)
	_, err = src.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestSourceEncodings(t *testing.T) {
	t.Run("utf8 bom", func(t *testing.T) {
		in := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<?xml version="1.0" encoding="UTF-8"?><t>é</t>`)...)
		evs := collect(t, NewSource(bytes.NewReader(in)))
		require.Equal(t, "é", evs[1].Text)
	})
	t.Run("utf16le bom", func(t *testing.T) {
		doc := `<?xml version="1.0" encoding="UTF-16"?><t>hi</t>`
		in := []byte{0xFF, 0xFE}
		for _, r := range doc {
			in = append(in, byte(r), 0)
		}
		evs := collect(t, NewSource(bytes.NewReader(in)))
		require.Equal(t, "hi", evs[1].Text)
	})
	t.Run("latin1 declaration", func(t *testing.T) {
		in := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><t>`), 0xE9)
		in = append(in, []byte(`</t>`)...)
		evs := collect(t, NewSource(bytes.NewReader(in)))
		require.Equal(t, "é", evs[1].Text)
	})
}

func TestSourceLenient(t *testing.T) {
	in := `<xml><v:shape><x:ClientData><br></x:ClientData></v:shape></xml>`
	_, err := drain(NewSource(strings.NewReader(in)))
	require.Error(t, err)
	n, err := drain(NewSource(strings.NewReader(in), Lenient()))
	require.NoError(t, err)
	require.Positive(t, n)
}

func drain(src *Source) (int, error) {
	n := 0
	for {
		_, err := src.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func TestWriterNesting(t *testing.T) {
	w := NewWriter()
	defer w.Release()
	w.OpenXML()
	w.OpenNode("sst", Int("count", 2))
	w.AddAttribute("uniqueCount", "1")
	w.OpenNode("si")
	w.LeafNode("t", []Attr{A("xml:space", "preserve")}, " a<b ")
	w.CloseNode()
	w.EmptyNode("x", Bool("on", true))
	w.CloseAll()
	require.NoError(t, w.Err())
	require.Equal(t, Declaration+`<sst count="2" uniqueCount="1"><si><t xml:space="preserve"> a&lt;b </t></si><x on="1"/></sst>`, w.String())
	require.Zero(t, w.Depth())
}

func TestWriterMisuse(t *testing.T) {
	w := NewWriter()
	defer w.Release()
	w.OpenNode("a")
	w.WriteText("x")
	w.AddAttribute("late", "1")
	require.ErrorIs(t, w.Err(), ErrNoOpenElement)
	w.CloseNode()
	require.Equal(t, "<a>x</a>", w.String())

	w2 := NewWriter()
	defer w2.Release()
	w2.CloseNode()
	w2.Commit()
	require.ErrorIs(t, w2.Err(), ErrNoOpenElement)
}

func TestWriterRollback(t *testing.T) {
	w := NewWriter()
	defer w.Release()
	w.OpenNode("root")
	before := w.Len()

	w.AddRollback()
	w.OpenNode("child", A("k", "v"))
	w.WriteText("discard me")
	w.CloseNode()
	w.Rollback()
	require.Equal(t, before, w.Len())

	w.AddRollback()
	w.EmptyNode("kept")
	w.Commit()
	w.CloseNode()
	require.NoError(t, w.Err())
	require.Equal(t, "<root><kept/></root>", w.String())
}

func TestWriterRollbackRestoresLeaf(t *testing.T) {
	w := NewWriter()
	defer w.Release()
	w.OpenNode("root")
	w.AddRollback()
	w.WriteText("x")
	w.Rollback()
	w.CloseNode()
	require.Equal(t, "<root/>", w.String())

	var buf bytes.Buffer
	_, err := w.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, "<root/>", buf.String())
}

func TestFormatFloat(t *testing.T) {
	require.Equal(t, "0", FormatFloat(0))
	require.Equal(t, "3.5", FormatFloat(3.5))
	require.Equal(t, "1000000", FormatFloat(1e6))
	require.Equal(t, "1E+21", FormatFloat(1e21))
	require.Equal(t, "1E-07", FormatFloat(1e-7))
}
