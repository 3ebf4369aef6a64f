package marketplace

import (
	"github.com/holiman/uint256"
	"github.com/otakuverse/ovchain/params"
)

// CalculateRoyalty returns floor(salePrice * bps / 10000). The product is
// taken in 256 bits; a result beyond uint64 saturates.
func CalculateRoyalty(salePrice uint64, bps uint16) uint64 {
	r := new(uint256.Int).Mul(uint256.NewInt(salePrice), uint256.NewInt(uint64(bps)))
	r.Div(r, uint256.NewInt(params.BasisPointsDenom))
	if !r.IsUint64() {
		return ^uint64(0)
	}
	return r.Uint64()
}
