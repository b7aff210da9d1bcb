// Package archive locates the first ZipCrypto-encrypted entry inside a raw
// PKZIP byte buffer and extracts everything the validators need: the 12-byte
// encryption preamble, the reference check byte, the compression method, the
// stored CRC-32 and the ciphertext.
package archive

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrNoEncryptedEntry       = errors.New("no encrypted entry in archive")
	ErrUnsupportedEncryption  = errors.New("unsupported encryption method")
	ErrUnsupportedCompression = errors.New("unsupported compression method")
	ErrTruncatedArchive       = errors.New("truncated archive")
)

const (
	localHeaderSignature    = 0x04034b50
	centralDirSignature     = 0x02014b50
	dataDescriptorSignature = 0x08074b50

	localHeaderLen = 30

	flagEncrypted        = 1 << 0
	flagDataDescriptor   = 1 << 3
	flagStrongEncryption = 1 << 6

	methodAES  = 99
	aesExtraID = 0x9901

	encryptionHeaderLen = 12
)

// Supported compression methods of the entry payload.
const (
	MethodStored   uint16 = 0
	MethodDeflated uint16 = 8
)

// EncryptedEntry describes the first encrypted entry of an archive.
type EncryptedEntry struct {
	// Header is the 12-byte encryption preamble preceding the ciphertext.
	Header [encryptionHeaderLen]byte
	// CheckByte is the reference value the last decrypted preamble byte must
	// equal for a candidate password to survive the fast check.
	CheckByte byte
	// TimeCheck reports which semantics CheckByte carries: true when it is
	// the high byte of the stored modification time (data-descriptor
	// entries, the Info-ZIP convention), false when it is the high byte of
	// the stored CRC-32.
	TimeCheck bool
	// Method is the compression method, MethodStored or MethodDeflated.
	Method uint16
	// CRC32 is the checksum of the entry plaintext. For data-descriptor
	// entries it is recovered from the central directory or the trailing
	// descriptor, since the local header stores zero.
	CRC32 uint32
	// Ciphertext is the compressed payload after the encryption preamble,
	// aliasing the caller's archive buffer.
	Ciphertext []byte
}

// FindEncryptedEntry scans data for local-file-header records and returns the
// first encrypted entry. Entries without the encryption bit are skipped. AES
// and strong-encryption entries fail fast rather than falling through to a
// later entry.
func FindEncryptedEntry(data []byte) (*EncryptedEntry, error) {
	for cursor := 0; cursor+localHeaderLen <= len(data); cursor++ {
		if binary.LittleEndian.Uint32(data[cursor:]) != localHeaderSignature {
			continue
		}
		flags := binary.LittleEndian.Uint16(data[cursor+6:])
		method := binary.LittleEndian.Uint16(data[cursor+8:])
		modTime := binary.LittleEndian.Uint16(data[cursor+10:])
		crc := binary.LittleEndian.Uint32(data[cursor+14:])
		compSize := int(binary.LittleEndian.Uint32(data[cursor+18:]))
		nameLen := int(binary.LittleEndian.Uint16(data[cursor+26:]))
		extraLen := int(binary.LittleEndian.Uint16(data[cursor+28:]))

		if flags&flagEncrypted == 0 {
			continue
		}

		extraOff := cursor + localHeaderLen + nameLen
		if flags&flagStrongEncryption != 0 || method == methodAES ||
			hasAESExtraField(data, extraOff, extraLen) {
			return nil, errors.Wrapf(ErrUnsupportedEncryption,
				"entry at offset %d", cursor)
		}
		if method != MethodStored && method != MethodDeflated {
			return nil, errors.Wrapf(ErrUnsupportedCompression,
				"method %d at offset %d", method, cursor)
		}

		payloadOff := extraOff + extraLen
		if payloadOff+encryptionHeaderLen > len(data) {
			return nil, errors.Wrapf(ErrTruncatedArchive,
				"encryption header at offset %d", payloadOff)
		}

		if flags&flagDataDescriptor != 0 {
			// Streaming writers defer CRC and sizes to a trailing data
			// descriptor and the central directory.
			if cdCRC, cdSize, ok := lookupCentralDirectory(data, uint32(cursor)); ok {
				crc = cdCRC
				compSize = int(cdSize)
			} else if ddCRC, ddSize, ok := scanDataDescriptor(data, payloadOff); ok {
				crc = ddCRC
				compSize = int(ddSize)
			}
		}
		if compSize < encryptionHeaderLen {
			return nil, errors.Wrapf(ErrTruncatedArchive,
				"compressed size %d at offset %d", compSize, cursor)
		}
		end := payloadOff + compSize
		if end > len(data) {
			return nil, errors.Wrapf(ErrTruncatedArchive,
				"payload of %d bytes overruns buffer", compSize)
		}

		entry := &EncryptedEntry{
			Method:     method,
			CRC32:      crc,
			Ciphertext: data[payloadOff+encryptionHeaderLen : end],
		}
		copy(entry.Header[:], data[payloadOff:payloadOff+encryptionHeaderLen])
		if flags&flagDataDescriptor != 0 {
			entry.CheckByte = byte(modTime >> 8)
			entry.TimeCheck = true
		} else {
			entry.CheckByte = byte(crc >> 24)
		}
		return entry, nil
	}
	return nil, ErrNoEncryptedEntry
}

// hasAESExtraField walks the extra-field block looking for the WinZip AES
// record 0x9901.
func hasAESExtraField(data []byte, off, length int) bool {
	end := off + length
	if off < 0 || end > len(data) {
		return false
	}
	for off+4 <= end {
		id := binary.LittleEndian.Uint16(data[off:])
		size := int(binary.LittleEndian.Uint16(data[off+2:]))
		if id == aesExtraID {
			return true
		}
		off += 4 + size
	}
	return false
}

// lookupCentralDirectory finds the central-directory record whose
// local-header offset matches localOff and returns its CRC-32 and compressed
// size.
func lookupCentralDirectory(data []byte, localOff uint32) (crc, compSize uint32, ok bool) {
	for cursor := 0; cursor+46 <= len(data); cursor++ {
		if binary.LittleEndian.Uint32(data[cursor:]) != centralDirSignature {
			continue
		}
		if binary.LittleEndian.Uint32(data[cursor+42:]) != localOff {
			continue
		}
		crc = binary.LittleEndian.Uint32(data[cursor+16:])
		compSize = binary.LittleEndian.Uint32(data[cursor+20:])
		return crc, compSize, true
	}
	return 0, 0, false
}

// scanDataDescriptor searches forward from the payload for a signed data
// descriptor whose position agrees with its own compressed-size field, and
// returns that descriptor's CRC and size fields verbatim.
func scanDataDescriptor(data []byte, payloadOff int) (crc, compSize uint32, ok bool) {
	for cursor := payloadOff; cursor+16 <= len(data); cursor++ {
		if binary.LittleEndian.Uint32(data[cursor:]) != dataDescriptorSignature {
			continue
		}
		crc = binary.LittleEndian.Uint32(data[cursor+4:])
		compSize = binary.LittleEndian.Uint32(data[cursor+8:])
		if payloadOff+int(compSize) == cursor {
			return crc, compSize, true
		}
	}
	return 0, 0, false
}
