package chain

import "errors"

var ErrUnsupportedChain = errors.New("unsupported chain")
var ErrInvalidConfig = errors.New("invalid derivation input")
var ErrInvalidTransaction = errors.New("invalid transaction parameters")

// Adapter hides one chain family behind the governance-facing contract:
// deterministic address derivation and canonical unsigned-transaction
// construction. Implementations are pure; they perform no I/O.
type Adapter interface {
	DeriveVaultAddress(cfg DerivationConfig) (Derivation, error)
	BuildDeployment(cfg DerivationConfig) (Deployment, error)
	BuildTransaction(spec TxSpec) (UnsignedTx, error)
}

// Registry dispatches on the chain family once, at the adapter boundary.
type Registry struct {
	adapters map[Family]Adapter
}

func NewRegistry(solana, evm Adapter) *Registry {
	return &Registry{
		adapters: map[Family]Adapter{
			FamilySolana: solana,
			FamilyEVM:    evm,
		},
	}
}

func (r *Registry) ForFamily(family Family) (Adapter, error) {
	adapter, ok := r.adapters[family]
	if !ok {
		return nil, ErrUnsupportedChain
	}
	return adapter, nil
}
