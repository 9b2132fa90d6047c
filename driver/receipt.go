// Package driver implements the transaction driver: it turns a manifest
// and a signer set into a deterministic receipt against a substate store
// (spec.md §4.H).
package driver

import (
	"errors"

	"txengine/core"
)

// Status is a receipt's terminal outcome.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Receipt is the deterministic outcome of one Execute call (spec.md §4.H
// step 4/5, §6 "Exit conditions").
type Receipt struct {
	Status       Status
	TxHash       core.Hash
	Logs         []core.LogEntry
	NewAddresses []core.Address
	ErrorKind    string
	ErrorDetail  string
}

func failureReceipt(txHash core.Hash, logs []core.LogEntry, err error) *Receipt {
	var re *core.RuntimeError
	ok := errors.As(err, &re)
	kind, detail := "InvokeFailure", err.Error()
	if ok {
		kind, detail = re.Kind.String(), re.Detail
	}
	return &Receipt{
		Status:      StatusFailure,
		TxHash:      txHash,
		Logs:        logs,
		ErrorKind:   kind,
		ErrorDetail: detail,
	}
}
