package common

import (
	"encoding/json"
	"testing"
)

func TestHexToAddressRoundTrip(t *testing.T) {
	s := "0xf81c536380b2dd5ef5c4ae95e1fae9b4fab2f5726677ecfa912d96b0b683e6a9"
	if !IsHexAddress(s) {
		t.Fatalf("expected %s to be a valid address", s)
	}
	a := HexToAddress(s)
	if a.Hex() != s {
		t.Fatalf("hex mismatch: have %s want %s", a.Hex(), s)
	}
}

func TestShortAddressIsRightAligned(t *testing.T) {
	a := HexToAddress("0x0102")
	if a[30] != 0x01 || a[31] != 0x02 {
		t.Fatalf("short address not right-aligned: %x", a)
	}
	if IsHexAddress("0x0102") {
		t.Fatalf("short string must not be a valid full address")
	}
}

func TestAddressJSON(t *testing.T) {
	type payload struct {
		Mint Address `json:"mint"`
	}
	in := payload{Mint: Address{1, 2, 3}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out payload
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Mint != in.Mint {
		t.Fatalf("mint mismatch: have %v want %v", out.Mint, in.Mint)
	}
	if err := json.Unmarshal([]byte(`{"mint":"0x12"}`), &out); err == nil {
		t.Fatalf("expected short address to be rejected")
	}
}
