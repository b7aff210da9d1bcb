package cracker

import (
	"compress/flate"
	"hash"
	"hash/crc32"
	"io"

	"github.com/felnanuke2/rapid-crak/internal/archive"
	"github.com/felnanuke2/rapid-crak/internal/zipcrypto"
)

// matchesHeader is the fast check: decrypt the 12-byte encryption preamble
// under the candidate and compare the final byte against the reference. A
// random wrong password survives with probability ~1/256, so a match only
// nominates the candidate for full verification. No allocations.
func matchesHeader(entry *archive.EncryptedEntry, password []byte) bool {
	keys := zipcrypto.NewKeys()
	keys.UpdateAll(password)
	for i := 0; i < 11; i++ {
		keys.DecryptByte(entry.Header[i])
	}
	return entry.Header[11]^keys.StreamByte() == entry.CheckByte
}

// fullVerifier is the authoritative check: continue the key schedule through
// the ciphertext, decompress, and compare the plaintext CRC-32 against the
// stored one. Cold path; scratch buffers are reused across calls but scoped
// to one worker.
type fullVerifier struct {
	entry *archive.EncryptedEntry
	dec   *zipcrypto.Decryptor
	fr    io.ReadCloser
	crc   hash.Hash32
	buf   []byte
}

func newFullVerifier(entry *archive.EncryptedEntry) *fullVerifier {
	return &fullVerifier{
		entry: entry,
		dec:   zipcrypto.NewDecryptor(nil, zipcrypto.NewKeys()),
		fr:    flate.NewReader(nil),
		crc:   crc32.NewIEEE(),
		buf:   make([]byte, 32*1024),
	}
}

// verify reports whether password decrypts the entry to plaintext matching
// the stored CRC-32. Decryption, decompression and checksum failures reject
// the candidate; they are never surfaced as errors.
func (v *fullVerifier) verify(password []byte) bool {
	keys := zipcrypto.NewKeys()
	keys.UpdateAll(password)
	for i := 0; i < len(v.entry.Header); i++ {
		keys.DecryptByte(v.entry.Header[i])
	}
	v.dec.Reset(v.entry.Ciphertext, keys)
	v.crc.Reset()

	var src io.Reader = v.dec
	if v.entry.Method == archive.MethodDeflated {
		if err := v.fr.(flate.Resetter).Reset(v.dec, nil); err != nil {
			return false
		}
		src = v.fr
	}
	if _, err := io.CopyBuffer(v.crc, src, v.buf); err != nil {
		return false
	}
	return v.crc.Sum32() == v.entry.CRC32
}
