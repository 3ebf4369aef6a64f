// Package record implements the fixed-schema binary encoding of stored
// records.
//
// Every encoded record starts with an 8-byte discriminator derived from its
// kind, followed by the Borsh layout of the value. Integers and identities are
// fixed-width little-endian; strings and lists carry a u32 length prefix.
package record

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/near/borsh-go"
	"github.com/otakuverse/ovchain/crypto"
)

// DiscriminatorLength is the size of the kind prefix.
const DiscriminatorLength = 8

var (
	// ErrKindMismatch is returned when the stored discriminator does not
	// belong to the requested kind.
	ErrKindMismatch = errors.New("record: kind mismatch")
	// ErrShortRecord is returned when data is too short to hold a
	// discriminator.
	ErrShortRecord = errors.New("record: data too short")
)

// Value is implemented by every storable record type.
type Value interface {
	RecordKind() string
}

// Discriminator returns the 8-byte prefix identifying kind.
func Discriminator(kind string) [DiscriminatorLength]byte {
	var d [DiscriminatorLength]byte
	copy(d[:], crypto.Keccak256([]byte("record:"+kind)))
	return d
}

// ErrNilRecord is returned when Encode is handed a nil pointer.
var ErrNilRecord = errors.New("record: nil value")

// Encode serialises v with its discriminator. Pointers are dereferenced
// first: borsh writes a pointer as an Option, which Decode does not expect.
func Encode(v Value) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, ErrNilRecord
	}
	body, err := borsh.Serialize(reflect.Indirect(rv).Interface())
	if err != nil {
		return nil, fmt.Errorf("record: encode %s: %w", v.RecordKind(), err)
	}
	d := Discriminator(v.RecordKind())
	out := make([]byte, 0, DiscriminatorLength+len(body))
	out = append(out, d[:]...)
	return append(out, body...), nil
}

// Decode deserialises data into v, which must be a pointer.
func Decode(data []byte, v Value) error {
	if len(data) < DiscriminatorLength {
		return ErrShortRecord
	}
	d := Discriminator(v.RecordKind())
	if !bytes.Equal(data[:DiscriminatorLength], d[:]) {
		return fmt.Errorf("%w: want %s", ErrKindMismatch, v.RecordKind())
	}
	if err := borsh.Deserialize(v, data[DiscriminatorLength:]); err != nil {
		return fmt.Errorf("record: decode %s: %w", v.RecordKind(), err)
	}
	return nil
}

// KindOf reports which of kinds matches the discriminator of data.
func KindOf(data []byte, kinds ...string) (string, bool) {
	if len(data) < DiscriminatorLength {
		return "", false
	}
	for _, k := range kinds {
		d := Discriminator(k)
		if bytes.Equal(data[:DiscriminatorLength], d[:]) {
			return k, true
		}
	}
	return "", false
}
