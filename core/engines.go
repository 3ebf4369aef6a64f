package core

// Engines register their handlers with sysaction.DefaultRegistry on import.
import (
	_ "github.com/otakuverse/ovchain/events"
	_ "github.com/otakuverse/ovchain/globalstate"
	_ "github.com/otakuverse/ovchain/governance"
	_ "github.com/otakuverse/ovchain/marketplace"
	_ "github.com/otakuverse/ovchain/membership"
	_ "github.com/otakuverse/ovchain/messaging"
	_ "github.com/otakuverse/ovchain/staking"
)
