package cracker

import (
	"bytes"
	_ "embed"
)

// The embedded corpus is a newline-separated common-password list compiled
// into the binary. Lines use LF; a CR immediately before the LF is ignored.
//
//go:embed wordlist.txt
var embeddedCorpus []byte

// dictionarySlabSize is the nominal slab handed to one worker during the
// embedded corpus pass. Slab cuts are extended to the next LF so no
// candidate straddles two slabs.
const dictionarySlabSize = 1 << 20

// corpusSlabs splits the embedded corpus into newline-aligned slabs for
// parallel fan-out.
func corpusSlabs() [][]byte {
	return splitSlabs(embeddedCorpus, dictionarySlabSize)
}

func splitSlabs(blob []byte, size int) [][]byte {
	var slabs [][]byte
	for len(blob) > 0 {
		if len(blob) <= size {
			slabs = append(slabs, blob)
			break
		}
		cut := size
		if nl := bytes.IndexByte(blob[cut:], '\n'); nl >= 0 {
			cut += nl + 1
		} else {
			cut = len(blob)
		}
		slabs = append(slabs, blob[:cut])
		blob = blob[cut:]
	}
	return slabs
}

// scanSlab iterates the candidates of one slab in order, skipping empty
// lines and lines longer than maxLen, stripping a trailing CR from each.
// Iteration stops early when fn returns false.
func scanSlab(slab []byte, maxLen int, fn func(word []byte) bool) {
	for len(slab) > 0 {
		line := slab
		if nl := bytes.IndexByte(slab, '\n'); nl >= 0 {
			line = slab[:nl]
			slab = slab[nl+1:]
		} else {
			slab = nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 || len(line) > maxLen {
			continue
		}
		if !fn(line) {
			return
		}
	}
}

// corpusLineCount counts the corpus candidates the dictionary phase would
// test under the given length cap, with the same skip rules as scanSlab.
func corpusLineCount(maxLen int) int {
	count := 0
	scanSlab(embeddedCorpus, maxLen, func([]byte) bool {
		count++
		return true
	})
	return count
}
