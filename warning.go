package xlsxio

import (
	"fmt"
	"strings"
)

// Warning describes a reference that could not be resolved while reading.
// The affected value is left out of the result and the read continues.
type Warning struct {
	Part    string
	Message string
}

func (w Warning) String() string {
	if w.Part == "" {
		return w.Message
	}
	return w.Part + ": " + w.Message
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(ws []Warning) string {
	var b strings.Builder
	for i, w := range ws {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(w.String())
	}
	return b.String()
}

type warnings struct {
	list []Warning
	seen map[Warning]struct{}
}

// add records a warning once.
func (ws *warnings) add(part, format string, args ...any) {
	w := Warning{Part: part, Message: fmt.Sprintf(format, args...)}
	if ws.seen == nil {
		ws.seen = make(map[Warning]struct{})
	}
	if _, dup := ws.seen[w]; dup {
		return
	}
	ws.seen[w] = struct{}{}
	ws.list = append(ws.list, w)
}
