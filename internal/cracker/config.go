package cracker

import "github.com/pkg/errors"

// MaxPasswordLength bounds generated candidates; per-worker password buffers
// and the shared sample buffer are sized to it.
const MaxPasswordLength = 16

// Config selects the search space for one invocation. Immutable once handed
// to Crack.
type Config struct {
	MinLength int
	MaxLength int

	UseLowercase bool
	UseUppercase bool
	UseNumbers   bool
	UseSymbols   bool

	// UseDictionary enables the embedded common-password corpus pass.
	UseDictionary bool
	// CustomWords are tried before the embedded corpus, in order.
	CustomWords []string

	// Workers caps the pool size; zero or negative means one worker per
	// logical core. Does not affect the search space or the estimate.
	Workers int
}

func (c Config) anyClass() bool {
	return c.UseLowercase || c.UseUppercase || c.UseNumbers || c.UseSymbols
}

func (c Config) validate() error {
	if c.MinLength < 1 || c.MinLength > c.MaxLength || c.MaxLength > MaxPasswordLength {
		return errors.Wrapf(ErrInvalidConfig, "length range %d..%d", c.MinLength, c.MaxLength)
	}
	if !c.anyClass() && !c.UseDictionary {
		return errors.Wrap(ErrInvalidConfig, "no character class and no dictionary")
	}
	return nil
}
