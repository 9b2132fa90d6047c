package driver

import (
	"github.com/ethereum/go-ethereum/crypto"

	"txengine/core"
	"txengine/core/manifest"
)

// Execute runs one transaction: a manifest evaluated against store, signed
// by signers, following spec.md §4.H's five steps. It never panics; every
// failure path returns a FAILURE receipt rather than a Go error, since a
// receipt is the only externally visible outcome of a transaction.
func Execute(manifestSrc string, signers []core.Address, store core.SubstateStore) *Receipt {
	txHash := transactionHash(manifestSrc, signers)

	engine := core.NewEngine(store, signers, txHash)
	engine.StartTopFrame()

	if err := manifest.Evaluate(engine, manifestSrc); err != nil {
		return failureReceipt(txHash, engine.Logs(), err)
	}

	if err := engine.FinishTopFrame(); err != nil {
		return failureReceipt(txHash, engine.Logs(), err)
	}

	if err := engine.Track().Commit(); err != nil {
		return failureReceipt(txHash, engine.Logs(), err)
	}

	return &Receipt{
		Status:       StatusSuccess,
		TxHash:       txHash,
		Logs:         engine.Logs(),
		NewAddresses: engine.NewEntities(),
	}
}

// transactionHash computes the deterministic digest spec.md §4.H step 1
// requires: a hash over the manifest's literal encoding and the ordered
// signer set, so identical inputs always derive identical addresses
// downstream (publish_package, create_component, create_resource all mix
// this hash with a per-transaction nonce).
func transactionHash(manifestSrc string, signers []core.Address) core.Hash {
	buf := make([]byte, 0, len(manifestSrc)+len(signers)*27)
	buf = append(buf, []byte(manifestSrc)...)
	for _, s := range signers {
		buf = append(buf, s[:]...)
	}
	var h core.Hash
	copy(h[:], crypto.Keccak256(buf))
	return h
}
