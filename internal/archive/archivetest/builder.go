// Package archivetest hand-builds minimal ZipCrypto archives for tests,
// covering both check-byte conventions: immediate local headers carrying the
// CRC, and streamed entries deferring CRC and sizes to a data descriptor and
// the central directory.
package archivetest

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"

	"github.com/felnanuke2/rapid-crak/internal/zipcrypto"
)

type Entry struct {
	Name     string
	Content  []byte
	Password string
	// Deflate compresses the payload with method 8; otherwise method 0.
	Deflate bool
	// Streamed sets general-purpose bit 3: the local header stores zero
	// CRC/sizes, a signed data descriptor follows the payload, and the
	// check byte derives from ModTime.
	Streamed bool
	ModTime  uint16
}

// Build assembles a single-entry encrypted archive with a central directory
// and end record.
func Build(e Entry) []byte {
	crc := crc32.ChecksumIEEE(e.Content)
	payload := e.Content
	method := uint16(0)
	if e.Deflate {
		var b bytes.Buffer
		fw, err := flate.NewWriter(&b, flate.DefaultCompression)
		if err != nil {
			panic(err)
		}
		if _, err := fw.Write(e.Content); err != nil {
			panic(err)
		}
		if err := fw.Close(); err != nil {
			panic(err)
		}
		payload = b.Bytes()
		method = 8
	}

	var header [12]byte
	for i := 0; i < 11; i++ {
		header[i] = byte(0xA0 + i)
	}
	if e.Streamed {
		header[11] = byte(e.ModTime >> 8)
	} else {
		header[11] = byte(crc >> 24)
	}

	keys := zipcrypto.NewKeys()
	keys.UpdateAll([]byte(e.Password))
	enc := make([]byte, 0, len(header)+len(payload))
	for _, p := range header {
		enc = append(enc, keys.EncryptByte(p))
	}
	for _, p := range payload {
		enc = append(enc, keys.EncryptByte(p))
	}

	flags := uint16(1)
	lfhCRC, lfhComp, lfhUncomp := crc, uint32(len(enc)), uint32(len(e.Content))
	if e.Streamed {
		flags |= 1 << 3
		lfhCRC, lfhComp, lfhUncomp = 0, 0, 0
	}

	var out bytes.Buffer
	u16 := func(v uint16) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		out.Write(b[:])
	}
	u32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		out.Write(b[:])
	}

	u32(0x04034b50)
	u16(20)
	u16(flags)
	u16(method)
	u16(e.ModTime)
	u16(0x5821) // mod date
	u32(lfhCRC)
	u32(lfhComp)
	u32(lfhUncomp)
	u16(uint16(len(e.Name)))
	u16(0)
	out.WriteString(e.Name)
	out.Write(enc)

	if e.Streamed {
		u32(0x08074b50)
		u32(crc)
		u32(uint32(len(enc)))
		u32(uint32(len(e.Content)))
	}

	cdOffset := uint32(out.Len())
	u32(0x02014b50)
	u16(20)
	u16(20)
	u16(flags)
	u16(method)
	u16(e.ModTime)
	u16(0x5821)
	u32(crc)
	u32(uint32(len(enc)))
	u32(uint32(len(e.Content)))
	u16(uint16(len(e.Name)))
	u16(0)
	u16(0)
	u16(0)
	u16(0)
	u32(0)
	u32(0) // local header offset
	out.WriteString(e.Name)
	cdSize := uint32(out.Len()) - cdOffset

	u32(0x06054b50)
	u16(0)
	u16(0)
	u16(1)
	u16(1)
	u32(cdSize)
	u32(cdOffset)
	u16(0)

	return out.Bytes()
}
