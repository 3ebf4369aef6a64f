package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestKeccak256Empty(t *testing.T) {
	want, _ := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	if got := Keccak256(nil); !bytes.Equal(got, want) {
		t.Fatalf("keccak(empty) mismatch: have %x want %x", got, want)
	}
	if got := Keccak256Hash(); !bytes.Equal(got[:], want) {
		t.Fatalf("keccak hash(empty) mismatch: have %x want %x", got, want)
	}
}

func TestKeccak256MultiPart(t *testing.T) {
	joined := Keccak256([]byte("hello world"))
	parts := Keccak256([]byte("hello"), []byte(" "), []byte("world"))
	if !bytes.Equal(joined, parts) {
		t.Fatalf("multi-part hash differs: %x vs %x", joined, parts)
	}
}
