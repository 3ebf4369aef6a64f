package parallel

import (
	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/sysaction"
)

// AnalyzeMessage returns the static access set of an operation sent by from.
// Data that does not decode, and actions whose handler cannot predict their
// accesses, yield a barrier so the message runs alone.
func AnalyzeMessage(reg *sysaction.Registry, from common.Address, data []byte) AccessSet {
	sa, err := sysaction.Decode(data)
	if err != nil {
		return BarrierSet()
	}
	acc, ok := reg.Analyze(from, sa)
	if !ok {
		return BarrierSet()
	}
	return NewAccessSet(acc.Reads, acc.Writes)
}
