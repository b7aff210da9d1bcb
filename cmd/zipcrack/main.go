package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/felnanuke2/rapid-crak/internal/cracker"
	"github.com/felnanuke2/rapid-crak/internal/logging"
)

type wordList []string

func (w *wordList) String() string {
	return strings.Join(*w, ",")
}

func (w *wordList) Set(v string) error {
	*w = append(*w, v)
	return nil
}

func main() {
	var words wordList
	input := flag.String("f", "", "zip file path")
	minLen := flag.Int("min", 1, "min password length")
	maxLen := flag.Int("max", 6, "max password length")
	lower := flag.Bool("lower", true, "try lowercase letters")
	upper := flag.Bool("upper", false, "try uppercase letters")
	digits := flag.Bool("digits", true, "try digits")
	symbols := flag.Bool("symbols", false, "try symbols")
	dict := flag.Bool("dict", true, "try the built-in wordlist first")
	workers := flag.Int("workers", 0, "number of workers (0 = one per core)")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Var(&words, "word", "extra candidate word (repeatable)")
	flag.Parse()

	logging.Setup(*logLevel)

	if *input == "" {
		fmt.Println("usage: zipcrack -f file.zip [-min 1 -max 6 -lower -upper -digits -symbols -dict -word hunter2]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		color.Red("cannot read %s: %v", *input, err)
		os.Exit(1)
	}

	cfg := cracker.Config{
		MinLength:     *minLen,
		MaxLength:     *maxLen,
		UseLowercase:  *lower,
		UseUppercase:  *upper,
		UseNumbers:    *digits,
		UseSymbols:    *symbols,
		UseDictionary: *dict,
		CustomWords:   words,
		Workers:       *workers,
	}

	total, err := cracker.Estimate(cfg)
	if err != nil {
		color.Red("invalid configuration: %v", err)
		os.Exit(1)
	}
	fmt.Printf("[*] file: %s (%d KB) | search space: %s candidates\n",
		*input, len(data)/1024, total.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := progressbar.NewOptions64(barTotal(total),
		progressbar.OptionSetDescription("cracking"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("pw"),
	)

	sink := make(chan cracker.Snapshot, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range sink {
			_ = bar.Set64(clampInt64(snap.Attempts))
			bar.Describe(fmt.Sprintf("%-10s %s", snap.Phase, snap.CurrentPassword))
		}
	}()

	password, err := cracker.Crack(ctx, data, cfg, sink)
	close(sink)
	<-done
	fmt.Println()

	switch {
	case err == nil:
		color.Green("[+] PASSWORD FOUND: %s", password)
	case errors.Is(err, cracker.ErrNotFound):
		color.Red("[-] no match found in the configured space")
		os.Exit(1)
	case errors.Is(err, cracker.ErrCancelled):
		color.Yellow("[-] cancelled")
		os.Exit(130)
	default:
		color.Red("[-] %v", err)
		os.Exit(1)
	}
}

// barTotal fits the estimate onto the bar; oversized spaces degrade to an
// unbounded spinner.
func barTotal(total *big.Int) int64 {
	if total.IsInt64() {
		return total.Int64()
	}
	return -1
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
