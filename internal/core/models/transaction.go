package models

import "fmt"

// TxnID is an opaque transaction identity: a slot index in the transaction
// table plus the generation of that slot. A reused slot gets a new generation,
// so a stale id never aliases a live transaction. The zero value is invalid.
type TxnID struct {
	Index      uint32
	Generation uint32
}

func (id TxnID) Valid() bool {
	return id.Generation != 0
}

func (id TxnID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Generation)
}
