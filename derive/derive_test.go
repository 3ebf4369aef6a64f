package derive

import (
	"testing"

	"github.com/otakuverse/ovchain/common"
)

func TestAddressDeterministic(t *testing.T) {
	a := Address(TagProposal, U64(7))
	b := Address(TagProposal, U64(7))
	if a != b {
		t.Fatalf("derivation not deterministic: %s vs %s", a, b)
	}
	if a != Proposal(7) {
		t.Fatalf("typed helper disagrees with Address")
	}
}

func TestAddressDistinctTuples(t *testing.T) {
	// Same concatenated bytes, different splits.
	if Address("ab", []byte("c")) == Address("a", []byte("bc")) {
		t.Fatalf("tag/part boundary not separated")
	}
	if Address(TagVote, []byte{1, 2}, []byte{3}) == Address(TagVote, []byte{1}, []byte{2, 3}) {
		t.Fatalf("part boundary not separated")
	}
	if Address(TagEvent) == Address(TagEvent, nil) {
		t.Fatalf("empty part must change the preimage")
	}
	if Proposal(1) == Event(1) || Event(1) == Badge(1) {
		t.Fatalf("namespaces must not collide for the same id")
	}
}

func TestKeyedHelpers(t *testing.T) {
	alice := common.Address{0xa1}
	bob := common.Address{0xb0}
	mint := common.Address{0x33}

	if StakePosition(alice, mint) == StakePosition(bob, mint) {
		t.Fatalf("stake positions of different stakers collide")
	}
	if Vote(alice, 0) == Vote(alice, 1) {
		t.Fatalf("votes on different proposals collide")
	}
	if RSVP(alice, 5) == Vote(alice, 5) {
		t.Fatalf("rsvp and vote namespaces collide")
	}
	if CustodyAccount(alice, mint) == CustodyDelegate(alice, mint) {
		t.Fatalf("custody account and delegate collide")
	}
	c := Community("anime-club")
	if Message(c, 0) == Message(c, 1) {
		t.Fatalf("message sequence numbers collide")
	}
	if ProgramAuthority().IsZero() || GlobalState().IsZero() {
		t.Fatalf("singleton addresses must be non-zero")
	}
}

func TestU64LittleEndian(t *testing.T) {
	b := U64(0x0102)
	if len(b) != 8 || b[0] != 0x02 || b[1] != 0x01 {
		t.Fatalf("unexpected encoding %x", b)
	}
}

func TestParseAddress(t *testing.T) {
	alice := common.Address{0xa1}
	tests := []struct {
		tag   string
		parts []string
		want  common.Address
	}{
		{TagProposal, []string{"7"}, Proposal(7)},
		{TagVote, []string{alice.Hex(), "3"}, Vote(alice, 3)},
		{TagCommunity, []string{"anime-club"}, Community("anime-club")},
		{TagGlobalState, nil, GlobalState()},
	}
	for _, tt := range tests {
		got, err := ParseAddress(tt.tag, tt.parts)
		if err != nil {
			t.Fatalf("%s %v: %v", tt.tag, tt.parts, err)
		}
		if got != tt.want {
			t.Errorf("%s %v: got %s, want %s", tt.tag, tt.parts, got, tt.want)
		}
	}
	for _, bad := range []string{"0x123", "0xzz"} {
		if _, err := ParsePart(bad); err == nil {
			t.Errorf("ParsePart(%q) succeeded", bad)
		}
	}
}
