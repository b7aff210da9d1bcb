package cracker

import (
	"github.com/pkg/errors"

	"github.com/felnanuke2/rapid-crak/internal/archive"
)

// Terminal error kinds of an invocation. Archive-parse kinds are re-exported
// so callers match the whole taxonomy against one package.
var (
	ErrInvalidConfig = errors.New("invalid crack configuration")
	ErrNotFound      = errors.New("password not found")
	ErrCancelled     = errors.New("crack cancelled")

	ErrNoEncryptedEntry       = archive.ErrNoEncryptedEntry
	ErrUnsupportedEncryption  = archive.ErrUnsupportedEncryption
	ErrUnsupportedCompression = archive.ErrUnsupportedCompression
	ErrTruncatedArchive       = archive.ErrTruncatedArchive
)

// errorToken maps a terminal error to the short token carried by the final
// progress snapshot.
func errorToken(err error) string {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return "invalid-config"
	case errors.Is(err, ErrNoEncryptedEntry):
		return "no-encrypted-entry"
	case errors.Is(err, ErrUnsupportedEncryption):
		return "unsupported-encryption"
	case errors.Is(err, ErrUnsupportedCompression):
		return "unsupported-compression"
	case errors.Is(err, ErrTruncatedArchive):
		return "truncated-archive"
	case errors.Is(err, ErrNotFound):
		return "not-found"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	default:
		return "error"
	}
}
