package core

import "fmt"

// Bid, Vid, Mid and Rid are opaque 32-bit identifiers for transient
// buckets, persistent vaults, persistent lazy maps and transient
// bucket-refs respectively (spec.md §3). Vid and Mid are allocated from a
// counter persisted in the substate store so they remain globally unique
// across the lifetime of the store; Bid and Rid are allocated per
// transaction from an in-memory counter on the Engine and never persisted.
type Bid uint32
type Vid uint32
type Mid uint32
type Rid uint32

func (b Bid) String() string { return fmt.Sprintf("bid#%d", uint32(b)) }
func (v Vid) String() string { return fmt.Sprintf("vid#%d", uint32(v)) }
func (m Mid) String() string { return fmt.Sprintf("mid#%d", uint32(m)) }
func (r Rid) String() string { return fmt.Sprintf("rid#%d", uint32(r)) }
