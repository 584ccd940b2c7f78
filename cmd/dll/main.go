// Package main provides C-compatible exports for the xlsxio library.
// Build with: go build -buildmode=c-shared -o xlsxio.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
} XlsxioResult;
*/
import "C"

import (
	"bytes"
	"encoding/json"
	"unsafe"

	"github.com/logicossoftware/go-xlsxio"
	"github.com/logicossoftware/go-xlsxio/internal/summary"
	"github.com/logicossoftware/go-xlsxio/model"
)

func main() {}

// XlsxioFreeResult frees memory allocated by other Xlsxio functions.
// Must be called to avoid memory leaks.
//
//export XlsxioFreeResult
func XlsxioFreeResult(result C.XlsxioResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// XlsxioFreeString frees a C string allocated by Go.
//
//export XlsxioFreeString
func XlsxioFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// makeResult creates a result with data.
func makeResult(data []byte) C.XlsxioResult {
	var result C.XlsxioResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

// makeError creates a result with an error message.
func makeError(err error) C.XlsxioResult {
	var result C.XlsxioResult
	result.error = C.CString(err.Error())
	return result
}

func decode(data *C.char, dataLen C.int) (*model.Workbook, []xlsxio.Warning, error) {
	goData := C.GoBytes(unsafe.Pointer(data), dataLen)
	return xlsxio.Decode(bytes.NewReader(goData))
}

// XlsxioEncode builds a workbook from a JSON description and encodes it.
// Parameters:
//   - workbookJSON: {"title": "...", "sheets": [{"name": "...", "rows": [[...]]}]}
//     where each cell is a string, number, boolean or null and strings
//     starting with "=" are formulas
//   - compression: "store", "deflate", "zstd", "lz4" or "brotli" (NULL for deflate)
//
// Returns XlsxioResult with xlsx bytes or error. Call XlsxioFreeResult when done.
//
//export XlsxioEncode
func XlsxioEncode(workbookJSON *C.char, compression *C.char) C.XlsxioResult {
	var desc workbookDesc
	if err := json.Unmarshal([]byte(C.GoString(workbookJSON)), &desc); err != nil {
		return makeError(err)
	}
	wb, err := desc.build()
	if err != nil {
		return makeError(err)
	}

	comp := xlsxio.CompressionDeflate
	if compression != nil {
		if comp, err = xlsxio.ParseCompression(C.GoString(compression)); err != nil {
			return makeError(err)
		}
	}

	var buf bytes.Buffer
	if err := xlsxio.Encode(&buf, wb, xlsxio.WithCompression(comp)); err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

// XlsxioSummary decodes an xlsx file and returns a JSON summary of it.
// The JSON structure contains: title, sheets (with dimension and counts),
// defined_names, media and warnings.
//
// Returns XlsxioResult with JSON string or error. Call XlsxioFreeResult when done.
//
//export XlsxioSummary
func XlsxioSummary(data *C.char, dataLen C.int) C.XlsxioResult {
	wb, warns, err := decode(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	jsonBytes, err := json.Marshal(summary.Of(wb, warns))
	if err != nil {
		return makeError(err)
	}
	return makeResult(jsonBytes)
}

// XlsxioSheetJSON returns the values of one sheet as a JSON array of rows.
// Missing cells are null. An empty sheetName selects the first sheet.
//
// Returns XlsxioResult with JSON string or error. Call XlsxioFreeResult when done.
//
//export XlsxioSheetJSON
func XlsxioSheetJSON(data *C.char, dataLen C.int, sheetName *C.char) C.XlsxioResult {
	wb, _, err := decode(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	rows, err := sheetRows(wb, C.GoString(sheetName))
	if err != nil {
		return makeError(err)
	}
	jsonBytes, err := json.Marshal(rows)
	if err != nil {
		return makeError(err)
	}
	return makeResult(jsonBytes)
}

// XlsxioRepack decodes an xlsx file and encodes it again.
// Parameters:
//   - compression: "store", "deflate", "zstd", "lz4" or "brotli"
//   - level: codec level, -1 for the codec default
//   - sharedStrings: nonzero writes the shared string table
//
// Returns XlsxioResult with xlsx bytes or error. Call XlsxioFreeResult when done.
//
//export XlsxioRepack
func XlsxioRepack(data *C.char, dataLen C.int, compression *C.char, level C.int, sharedStrings C.int) C.XlsxioResult {
	comp, err := xlsxio.ParseCompression(C.GoString(compression))
	if err != nil {
		return makeError(err)
	}
	wb, _, err := decode(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	var buf bytes.Buffer
	err = xlsxio.Encode(&buf, wb,
		xlsxio.WithCompression(comp),
		xlsxio.WithCompressionLevel(int(level)),
		xlsxio.WithSharedStrings(sharedStrings != 0),
	)
	if err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

// XlsxioGetMediaData retrieves the raw bytes of an embedded file by name,
// e.g. "image1.png".
//
// Returns XlsxioResult with media data or error. Call XlsxioFreeResult when done.
//
//export XlsxioGetMediaData
func XlsxioGetMediaData(data *C.char, dataLen C.int, name *C.char) C.XlsxioResult {
	wb, _, err := decode(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	want := C.GoString(name)
	for _, m := range wb.Media {
		if m.FileName() == want {
			return makeResult(m.Data)
		}
	}
	var result C.XlsxioResult
	result.error = C.CString("media not found: " + want)
	return result
}

// XlsxioValidate decodes an xlsx file and reports the first failure.
// Returns NULL on success, or an error message string on failure. Warnings
// are returned as the message when strict is nonzero.
// Call XlsxioFreeString on the result if non-NULL.
//
//export XlsxioValidate
func XlsxioValidate(data *C.char, dataLen C.int, strict C.int) *C.char {
	_, warns, err := decode(data, dataLen)
	if err != nil {
		return C.CString(err.Error())
	}
	if strict != 0 && len(warns) > 0 {
		return C.CString(xlsxio.FormatWarnings(warns))
	}
	return nil
}

// XlsxioGetSheetCount returns the number of worksheets in an xlsx file.
// Returns -1 on error.
//
//export XlsxioGetSheetCount
func XlsxioGetSheetCount(data *C.char, dataLen C.int) C.int {
	wb, _, err := decode(data, dataLen)
	if err != nil {
		return -1
	}
	return C.int(len(wb.Worksheets))
}

// XlsxioGetMediaCount returns the number of embedded files in an xlsx file.
// Returns -1 on error.
//
//export XlsxioGetMediaCount
func XlsxioGetMediaCount(data *C.char, dataLen C.int) C.int {
	wb, _, err := decode(data, dataLen)
	if err != nil {
		return -1
	}
	return C.int(len(wb.Media))
}
