package xlsxio

import "github.com/logicossoftware/go-xlsxio/internal/container"

// Compression selects how parts are stored in the written archive.
type Compression = container.Compression

const (
	// CompressionDeflate is the standard zip method and the default.
	CompressionDeflate = container.Deflate
	CompressionStore   = container.Store
	// CompressionZSTD uses zip method 93. Recent 7-Zip and WinZip read it;
	// spreadsheet applications generally do not.
	CompressionZSTD = container.ZSTD
	// CompressionLZ4 and CompressionBrotli use private zip methods and
	// produce archives only this package reads back.
	CompressionLZ4    = container.LZ4
	CompressionBrotli = container.Brotli
)

// DefaultCompressionLevel lets each codec pick its default level.
const DefaultCompressionLevel = container.DefaultLevel

// ParseCompression maps "store", "deflate", "zstd", "lz4" or "brotli" to a
// Compression.
func ParseCompression(name string) (Compression, error) {
	return container.ParseCompression(name)
}
