package params

// These are the multipliers for native currency denominations.
// Prices and payments are always carried in lamports.
const (
	Lamport              = 1
	LamportsPerOV uint64 = 1e9
	// OVDecimals is the number of decimal places between lamports and OV.
	OVDecimals = 9
)
