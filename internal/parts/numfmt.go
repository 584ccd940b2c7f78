package parts

import (
	"strings"
	"sync"
	"time"

	"github.com/xuri/nfp"
)

// builtinNumFmts are the implicit number formats every consumer knows.
var builtinNumFmts = map[int]string{
	0: "General", 1: "0", 2: "0.00", 3: "#,##0", 4: "#,##0.00",
	9: "0%", 10: "0.00%", 11: "0.00E+00", 12: "# ?/?", 13: "# ??/??",
	14: "mm-dd-yy", 15: "d-mmm-yy", 16: "d-mmm", 17: "mmm-yy",
	18: "h:mm AM/PM", 19: "h:mm:ss AM/PM", 20: "h:mm", 21: "h:mm:ss", 22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)", 38: "#,##0 ;[Red](#,##0)", 39: "#,##0.00;(#,##0.00)", 40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss", 46: "[h]:mm:ss", 47: "mmss.0", 48: "##0.0E+0", 49: "@",
}

var builtinNumFmtIDs = func() map[string]int {
	m := make(map[string]int, len(builtinNumFmts))
	for id, code := range builtinNumFmts {
		m[code] = id
	}
	return m
}()

// DefaultDateFormat is applied to date cells written without a number format.
const DefaultDateFormat = "mm-dd-yy"

var dateFormats sync.Map // format code → bool

// IsDateFormat reports whether code renders numbers as dates or times.
// Codes are tokenized so literals such as "\d" or "[Red]" do not count.
func IsDateFormat(code string) bool {
	if code == "" || strings.EqualFold(code, "General") {
		return false
	}
	if v, ok := dateFormats.Load(code); ok {
		return v.(bool)
	}
	isDate := false
	ps := nfp.NumberFormatParser()
	for _, section := range ps.Parse(code) {
		for _, tok := range section.Items {
			if tok.TType == nfp.TokenTypeDateTimes || tok.TType == nfp.TokenTypeElapsedDateTimes {
				isDate = true
			}
		}
	}
	dateFormats.Store(code, isDate)
	return isDate
}

var (
	epoch1900 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
)

const dayNanos = float64(24 * time.Hour)

// SerialToTime converts a date serial to UTC time. Serials before 61 in the
// 1900 system are shifted by one day to undo the phantom 1900-02-29.
func SerialToTime(serial float64, date1904 bool) time.Time {
	if date1904 {
		return epoch1904.Add(time.Duration(serial*dayNanos + 0.5)).Truncate(time.Millisecond)
	}
	if serial < 61 {
		serial++
	}
	return epoch1900.Add(time.Duration(serial*dayNanos + 0.5)).Truncate(time.Millisecond)
}

// TimeToSerial converts t to a date serial, see SerialToTime.
func TimeToSerial(t time.Time, date1904 bool) float64 {
	t = t.UTC()
	if date1904 {
		return float64(t.Sub(epoch1904)) / dayNanos
	}
	serial := float64(t.Sub(epoch1900)) / dayNanos
	if serial < 61 {
		serial--
	}
	return serial
}
