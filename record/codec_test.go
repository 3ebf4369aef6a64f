package record

import (
	"errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/otakuverse/ovchain/common"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Owner    common.Address
	Title    string
	Count    uint64
	Active   bool
	Tags     []string
	Basis    uint16
	Recorded int64
}

func (*sample) RecordKind() string { return "sample" }

type other struct{ N uint32 }

func (*other) RecordKind() string { return "other" }

func TestEncodeDecode(t *testing.T) {
	in := &sample{
		Owner:    common.Address{1, 2, 3},
		Title:    "Spring Festival",
		Count:    42,
		Active:   true,
		Tags:     []string{"a", "bb"},
		Basis:    250,
		Recorded: 1_700_000_000,
	}
	data, err := Encode(in)
	require.NoError(t, err)

	d := Discriminator("sample")
	require.Equal(t, d[:], data[:DiscriminatorLength])

	var out sample
	require.NoError(t, Decode(data, &out))
	require.Equal(t, *in, out)
}

func TestLayoutIsLengthPrefixed(t *testing.T) {
	data, err := Encode(&sample{Title: "abc"})
	require.NoError(t, err)
	body := data[DiscriminatorLength:]
	// 32-byte owner, then a u32 little-endian length, then the string bytes.
	require.Equal(t, []byte{3, 0, 0, 0, 'a', 'b', 'c'}, body[32:39])
}

func TestEncodeWritesBareBody(t *testing.T) {
	data, err := Encode(&other{N: 7})
	require.NoError(t, err)
	require.Equal(t, []byte{7, 0, 0, 0}, data[DiscriminatorLength:])

	data, err = Encode(&sample{Owner: common.Address{0xaa}, Count: 7})
	require.NoError(t, err)
	require.Equal(t, byte(0xaa), data[DiscriminatorLength])

	var out sample
	require.NoError(t, Decode(data, &out))
	require.Equal(t, common.Address{0xaa}, out.Owner)
	require.Equal(t, uint64(7), out.Count)

	var missing *other
	_, err = Encode(missing)
	require.ErrorIs(t, err, ErrNilRecord)
}

func TestDecodeWrongKind(t *testing.T) {
	data, err := Encode(&other{N: 1})
	require.NoError(t, err)

	var s sample
	err = Decode(data, &s)
	require.True(t, errors.Is(err, ErrKindMismatch), "got %v", err)

	require.ErrorIs(t, Decode([]byte{1, 2}, &s), ErrShortRecord)
}

func TestKindOf(t *testing.T) {
	data, err := Encode(&other{N: 7})
	require.NoError(t, err)
	kind, ok := KindOf(data, "sample", "other")
	require.True(t, ok)
	require.Equal(t, "other", kind)

	_, ok = KindOf(data, "sample")
	require.False(t, ok)
}

func TestEncodeDecodeRandom(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 4)
	for i := 0; i < 200; i++ {
		in := new(sample)
		f.Fuzz(in)
		enc, err := Encode(in)
		require.NoError(t, err)

		out := new(sample)
		require.NoError(t, Decode(enc, out))
		require.Equal(t, in, out)
	}
}
