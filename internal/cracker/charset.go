package cracker

import "math"

const charsetCapacity = 94

const (
	numberClass    = "0123456789"
	lowercaseClass = "abcdefghijklmnopqrstuvwxyz"
	uppercaseClass = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	symbolClass    = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Charset is the ordered alphabet candidates are drawn from. Stored inline;
// copying a Charset is cheap and the zero value is an empty alphabet.
type Charset struct {
	data [charsetCapacity]byte
	size int

	// next maps each member byte to its successor, wrapping the last symbol
	// to the first, so Advance needs no position lookup.
	next [256]byte
	last byte
}

// NewCharset builds the alphabet from the enabled classes in fixed order:
// numbers, lowercase, uppercase, symbols.
func NewCharset(cfg Config) Charset {
	var cs Charset
	add := func(class string) {
		for i := 0; i < len(class); i++ {
			cs.data[cs.size] = class[i]
			cs.size++
		}
	}
	if cfg.UseNumbers {
		add(numberClass)
	}
	if cfg.UseLowercase {
		add(lowercaseClass)
	}
	if cfg.UseUppercase {
		add(uppercaseClass)
	}
	if cfg.UseSymbols {
		add(symbolClass)
	}
	if cs.size > 0 {
		cs.last = cs.data[cs.size-1]
		for i := 0; i < cs.size-1; i++ {
			cs.next[cs.data[i]] = cs.data[i+1]
		}
		cs.next[cs.last] = cs.data[0]
	}
	return cs
}

func (c *Charset) Size() int {
	return c.size
}

func (c *Charset) Bytes() []byte {
	return c.data[:c.size]
}

// Seek writes the candidate at the given ordinal into buf, treating the
// space as a base-|Σ| numeral system with the least-significant digit on the
// right.
func (c *Charset) Seek(ordinal uint64, buf []byte) {
	base := uint64(c.size)
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = c.data[ordinal%base]
		ordinal /= base
	}
}

// Advance steps buf to the successor candidate of the same length, carrying
// left when a position wraps past the last symbol.
func (c *Charset) Advance(buf []byte) {
	for i := len(buf) - 1; i >= 0; i-- {
		b := buf[i]
		buf[i] = c.next[b]
		if b != c.last {
			return
		}
	}
}

// SpaceSize returns |Σ|^length, saturating at MaxUint64. A saturated space
// is not enumerable in bounded time anyway; Estimate is the authoritative
// count.
func (c *Charset) SpaceSize(length int) uint64 {
	base := uint64(c.size)
	if base == 0 {
		return 0
	}
	total := uint64(1)
	for i := 0; i < length; i++ {
		if total > math.MaxUint64/base {
			return math.MaxUint64
		}
		total *= base
	}
	return total
}
