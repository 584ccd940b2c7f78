package xlsxio

import (
	"errors"

	"github.com/logicossoftware/go-xlsxio/internal/container"
)

var (
	ErrInvalidArchive         = container.ErrInvalidArchive
	ErrUnsupportedCompression = container.ErrUnsupportedCompression
	ErrEncrypted              = container.ErrEncrypted
	ErrLegacyFormat           = container.ErrLegacyFormat
	ErrLimitExceeded          = container.ErrLimitExceeded
	ErrInvalidPart            = errors.New("xlsxio: invalid part")
	ErrValidation             = errors.New("xlsxio: validation failed")
)

// PartError reports a failure while reading or writing one package part.
type PartError struct {
	Part string
	Err  error
}

func (e *PartError) Error() string { return e.Part + ": " + e.Err.Error() }

func (e *PartError) Unwrap() error { return e.Err }
