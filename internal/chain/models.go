package chain

type Family string

const (
	FamilySolana Family = "solana"
	FamilyEVM    Family = "evm"
)

// DerivationConfig carries the immutable inputs a vault address is derived
// from. Family-specific fields are only read by the matching adapter.
type DerivationConfig struct {
	ChainID string

	// solana: one-time create key (base58 public key)
	CreateKey string

	// evm: deployment-address prediction inputs
	Owners    []string
	Threshold int
	Salt      string // 0x + 64 hex chars
	Version   string
}

// Derivation is the derived custody address plus family-specific metadata
// callers may want to persist or display.
type Derivation struct {
	Address  string
	Metadata map[string]string
}

// Deployment is the unsigned artifact the vault creator signs externally to
// bring the vault on chain.
type Deployment struct {
	To          string
	Data        string // hex
	Address     string // the address the vault will live at
	Description string
}

// TxSpec is the family-agnostic description of a proposed action.
type TxSpec struct {
	ChainID      string
	VaultAddress string

	TxType         string
	ToAddress      string
	Amount         string // base units, decimal string
	TokenAddress   string
	TokenDecimals  int
	NewThreshold   int
	SignerToAdd    string
	SignerToRemove string
	RawPayload     string // hex, custom tx type

	ProposalIndex int64
}

// UnsignedTx is the canonical unsigned representation of a proposed action.
// For the evm family Hash is the EIP-712 digest signers sign off-band; for the
// solana family the pair (MultisigAddress, TransactionIndex) is the canonical
// identity and Hash is empty.
type UnsignedTx struct {
	ChainID string
	To      string
	Value   string
	Data    string // hex
	Nonce   uint64

	VerifyingContract string
	Hash              string

	MultisigAddress  string
	TransactionIndex int64
}

const (
	TxTypeTransfer        = "transfer"
	TxTypeTokenTransfer   = "token_transfer"
	TxTypeConfigChange    = "config_change"
	TxTypeAddSigner       = "add_signer"
	TxTypeRemoveSigner    = "remove_signer"
	TxTypeChangeThreshold = "change_threshold"
	TxTypeCustom          = "custom"
)
