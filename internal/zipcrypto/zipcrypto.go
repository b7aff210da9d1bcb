// Package zipcrypto implements the traditional PKWARE stream cipher as
// described in APPNOTE.TXT section 6.1. The cipher keeps three 32-bit key
// words derived from CRC-32; every plaintext byte folded into the state
// advances the keystream.
package zipcrypto

import "io"

const (
	seed0 = 0x12345678
	seed1 = 0x23456789
	seed2 = 0x34567890

	keyMultiplier = 134775813
)

// crcTable is the standard CRC-32 byte-step table for polynomial 0xEDB88320.
var crcTable [256]uint32

func init() {
	for i := range crcTable {
		c := uint32(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = (c >> 1) ^ 0xEDB88320
			} else {
				c >>= 1
			}
		}
		crcTable[i] = c
	}
}

// Keys is the cipher state. The zero value is not usable; start from NewKeys.
type Keys struct {
	k0, k1, k2 uint32
}

func NewKeys() Keys {
	return Keys{seed0, seed1, seed2}
}

// Update folds one plaintext byte into the key state.
func (k *Keys) Update(b byte) {
	k.k0 = crcTable[byte(k.k0)^b] ^ (k.k0 >> 8)
	k.k1 = (k.k1+(k.k0&0xff))*keyMultiplier + 1
	k.k2 = crcTable[byte(k.k2)^byte(k.k1>>24)] ^ (k.k2 >> 8)
}

// UpdateAll folds a byte string into the key state, typically a password.
func (k *Keys) UpdateAll(p []byte) {
	for _, b := range p {
		k.Update(b)
	}
}

// StreamByte returns the current keystream byte without advancing the state.
func (k *Keys) StreamByte() byte {
	t := (k.k2 | 2) & 0xffff
	return byte((t * (t ^ 1)) >> 8)
}

// DecryptByte decrypts one ciphertext byte and advances the state.
func (k *Keys) DecryptByte(c byte) byte {
	p := c ^ k.StreamByte()
	k.Update(p)
	return p
}

// EncryptByte encrypts one plaintext byte and advances the state.
func (k *Keys) EncryptByte(p byte) byte {
	c := p ^ k.StreamByte()
	k.Update(p)
	return c
}

// Decryptor decrypts a ciphertext buffer with a running key state. It
// implements io.Reader so it can feed directly into compress/flate.
type Decryptor struct {
	src  []byte
	pos  int
	keys Keys
}

func NewDecryptor(src []byte, keys Keys) *Decryptor {
	return &Decryptor{src: src, keys: keys}
}

// Reset rewinds the decryptor onto a new ciphertext and key state, reusing
// the allocation.
func (d *Decryptor) Reset(src []byte, keys Keys) {
	d.src = src
	d.pos = 0
	d.keys = keys
}

func (d *Decryptor) Read(p []byte) (int, error) {
	avail := len(d.src) - d.pos
	if avail <= 0 {
		return 0, io.EOF
	}
	n := len(p)
	if n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		p[i] = d.keys.DecryptByte(d.src[d.pos])
		d.pos++
	}
	return n, nil
}
