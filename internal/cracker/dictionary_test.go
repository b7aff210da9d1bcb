package cracker

import (
	"bytes"
	"testing"
)

func TestCorpusContainsCommonPasswords(t *testing.T) {
	for _, want := range []string{"password", "123456", "letmein", "qwerty"} {
		found := false
		scanSlab(embeddedCorpus, MaxPasswordLength, func(word []byte) bool {
			if string(word) == want {
				found = true
				return false
			}
			return true
		})
		if !found {
			t.Fatalf("corpus missing %q", want)
		}
	}
}

func TestScanSlabSkipsAndStrips(t *testing.T) {
	slab := []byte("abc\r\n\n\nveryverylongline\nxy\nlast")
	var got []string
	scanSlab(slab, 8, func(word []byte) bool {
		got = append(got, string(word))
		return true
	})
	want := []string{"abc", "xy", "last"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanSlabEarlyStop(t *testing.T) {
	slab := []byte("a\nb\nc\n")
	calls := 0
	scanSlab(slab, 8, func([]byte) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestSplitSlabsNewlineAligned(t *testing.T) {
	blob := bytes.Repeat([]byte("word\n"), 1000)
	slabs := splitSlabs(blob, 64)
	total := 0
	for i, slab := range slabs {
		total += len(slab)
		if i < len(slabs)-1 && slab[len(slab)-1] != '\n' {
			t.Fatalf("slab %d not newline-terminated", i)
		}
		if len(slab) < 64 && i < len(slabs)-1 {
			t.Fatalf("slab %d shorter than nominal size", i)
		}
	}
	if total != len(blob) {
		t.Fatalf("slabs cover %d of %d bytes", total, len(blob))
	}

	// No candidate is split across slabs: counts must agree.
	direct := 0
	scanSlab(blob, 16, func([]byte) bool { direct++; return true })
	viaSlabs := 0
	for _, slab := range slabs {
		scanSlab(slab, 16, func([]byte) bool { viaSlabs++; return true })
	}
	if direct != viaSlabs {
		t.Fatalf("direct %d != via slabs %d", direct, viaSlabs)
	}
}

func TestCorpusLineCountHonorsLengthCap(t *testing.T) {
	full := corpusLineCount(MaxPasswordLength)
	if full == 0 {
		t.Fatal("empty corpus")
	}
	short := corpusLineCount(4)
	if short == 0 || short >= full {
		t.Fatalf("cap 4 count = %d, full = %d", short, full)
	}
	// The count is exactly the candidates a capped dictionary pass tests.
	tested := 0
	scanSlab(embeddedCorpus, 4, func([]byte) bool { tested++; return true })
	if short != tested {
		t.Fatalf("count %d != tested %d", short, tested)
	}
}
