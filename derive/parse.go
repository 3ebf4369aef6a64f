package derive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/otakuverse/ovchain/common"
)

// ParsePart decodes a textual key part. A 0x-prefixed value is raw hex, a
// decimal number is a U64 part and anything else is taken as UTF-8 bytes.
func ParsePart(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s)%2 != 0 {
			return nil, fmt.Errorf("odd-length hex part %q", s)
		}
		b := common.FromHex(s)
		if len(b)*2+2 != len(s) {
			return nil, fmt.Errorf("invalid hex part %q", s)
		}
		return b, nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return U64(n), nil
	}
	return []byte(s), nil
}

// ParseAddress derives the address for tag from textual parts.
func ParseAddress(tag string, parts []string) (common.Address, error) {
	raw := make([][]byte, len(parts))
	for i, p := range parts {
		b, err := ParsePart(p)
		if err != nil {
			return common.Address{}, err
		}
		raw[i] = b
	}
	return Address(tag, raw...), nil
}
