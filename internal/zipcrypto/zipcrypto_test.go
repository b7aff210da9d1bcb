package zipcrypto

import (
	"bytes"
	"hash/crc32"
	"io"
	"testing"
)

func TestTableMatchesStdlib(t *testing.T) {
	std := crc32.MakeTable(crc32.IEEE)
	for i := range crcTable {
		if crcTable[i] != std[i] {
			t.Fatalf("table[%d] = %#x, stdlib %#x", i, crcTable[i], std[i])
		}
	}
}

func TestNewKeysSeeds(t *testing.T) {
	k := NewKeys()
	if k.k0 != 0x12345678 || k.k1 != 0x23456789 || k.k2 != 0x34567890 {
		t.Fatalf("unexpected seeds: %#x %#x %#x", k.k0, k.k1, k.k2)
	}
}

func TestUpdateDeterministic(t *testing.T) {
	a, b := NewKeys(), NewKeys()
	a.UpdateAll([]byte("secret"))
	b.UpdateAll([]byte("secret"))
	if a != b {
		t.Fatalf("same input diverged: %+v vs %+v", a, b)
	}
	b.Update('!')
	if a == b {
		t.Fatal("extra byte did not change state")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("the quick brown fox jumps over the lazy dog 0123456789")

	enc := NewKeys()
	enc.UpdateAll([]byte("hunter2"))
	ciphertext := make([]byte, len(plaintext))
	for i, p := range plaintext {
		ciphertext[i] = enc.EncryptByte(p)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	dec := NewKeys()
	dec.UpdateAll([]byte("hunter2"))
	got := make([]byte, len(plaintext))
	for i, c := range ciphertext {
		got[i] = dec.DecryptByte(c)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestDecryptorReader(t *testing.T) {
	plaintext := bytes.Repeat([]byte("abcdefgh"), 100)
	enc := NewKeys()
	enc.UpdateAll([]byte("pw"))
	ciphertext := make([]byte, len(plaintext))
	for i, p := range plaintext {
		ciphertext[i] = enc.EncryptByte(p)
	}

	keys := NewKeys()
	keys.UpdateAll([]byte("pw"))
	d := NewDecryptor(ciphertext, keys)
	got, err := io.ReadAll(d)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatal("decryptor output mismatch")
	}
	if _, err := d.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("expected EOF after drain, got %v", err)
	}

	// Reset reuses the allocation onto a fresh stream.
	keys2 := NewKeys()
	keys2.UpdateAll([]byte("pw"))
	d.Reset(ciphertext[:16], keys2)
	got, err = io.ReadAll(d)
	if err != nil || !bytes.Equal(got, plaintext[:16]) {
		t.Fatalf("reset read mismatch: %q err %v", got, err)
	}
}

func TestWrongPasswordGarbles(t *testing.T) {
	plaintext := []byte("plaintext body")
	enc := NewKeys()
	enc.UpdateAll([]byte("right"))
	ciphertext := make([]byte, len(plaintext))
	for i, p := range plaintext {
		ciphertext[i] = enc.EncryptByte(p)
	}

	dec := NewKeys()
	dec.UpdateAll([]byte("wrong"))
	got := make([]byte, len(plaintext))
	for i, c := range ciphertext {
		got[i] = dec.DecryptByte(c)
	}
	if bytes.Equal(got, plaintext) {
		t.Fatal("wrong password decrypted cleanly")
	}
}

func BenchmarkUpdate(b *testing.B) {
	k := NewKeys()
	for i := 0; i < b.N; i++ {
		k.Update(byte(i))
	}
}
