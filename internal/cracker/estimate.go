package cracker

import "math/big"

// Estimate returns the exact number of candidates the configured search
// would enumerate: sum of |Σ|^L over the length range, plus the custom-word
// and embedded-corpus counts when the dictionary phases apply. Arbitrary
// precision; 94^16 does not overflow.
func Estimate(cfg Config) (*big.Int, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	total := new(big.Int)
	cs := NewCharset(cfg)
	if cs.Size() > 0 {
		base := big.NewInt(int64(cs.Size()))
		exp := new(big.Int)
		for length := cfg.MinLength; length <= cfg.MaxLength; length++ {
			exp.Exp(base, big.NewInt(int64(length)), nil)
			total.Add(total, exp)
		}
	}
	custom := 0
	for _, word := range cfg.CustomWords {
		if len(word) > 0 && len(word) <= cfg.MaxLength {
			custom++
		}
	}
	total.Add(total, big.NewInt(int64(custom)))
	if cfg.UseDictionary {
		total.Add(total, big.NewInt(int64(corpusLineCount(cfg.MaxLength))))
	}
	return total, nil
}
