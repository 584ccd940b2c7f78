// Package xlsxio reads and writes Office Open XML spreadsheet packages
// (.xlsx).
//
// A package is a zip archive of XML parts tied together by relationship
// parts. Decoding streams every recognized part through its transform and
// reconciles the results into one [model.Workbook] in which style ids,
// shared-string indices and relationship ids are already resolved.
// Encoding runs the other way: a prepare pass assigns ids and part names,
// then every part is rendered and written to a fresh archive.
//
// # Basic Usage
//
// To write a workbook:
//
//	wb := &model.Workbook{}
//	ws := wb.AddWorksheet("Sheet1")
//	ws.Cell("A1").Value = model.String("Hello")
//	ws.Cell("B1").Value = model.Number(42)
//	err := xlsxio.EncodeFile("out.xlsx", wb)
//
// To read one:
//
//	wb, warnings, err := xlsxio.DecodeFile("in.xlsx")
//
// Warnings list references that could not be resolved, such as a cell
// pointing at a missing shared string. The affected values are left out.
//
// # Security Considerations
//
// Reading enforces configurable [Limits] on the number of archive entries,
// on the uncompressed size of single parts and of the whole archive, and on
// how many cells range lists may expand to. Encrypted and legacy binary
// workbooks are rejected with [ErrEncrypted] and [ErrLegacyFormat].
package xlsxio
