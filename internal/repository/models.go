package repository

import "time"

type Vault struct {
	ID           string `gorm:"primaryKey;size:36"`
	OwnerAddress string `gorm:"size:64;not null;index"`
	Name         string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	ChainFamily  string `gorm:"size:16;not null"`
	ChainID      string `gorm:"size:32;not null"`
	VaultAddress string `gorm:"size:64;not null;index"`

	// Family-specific derivation inputs, immutable once the address is derived.
	// OwnerSet and SetupThreshold snapshot the creation-time values; later
	// registry edits must not change what the deployment artifact derives from.
	CreateKey       string `gorm:"size:64"`  // solana one-time create key (base58)
	DeploymentSalt  string `gorm:"size:66"`  // evm create2 salt (0x + 64 hex)
	ContractVersion string `gorm:"size:16"`
	OwnerSet        string `gorm:"type:text"`          // creation-time signer addresses, comma joined
	SetupThreshold  int    `gorm:"not null;default:0"` // creation-time threshold baked into the setup call

	Threshold    int    `gorm:"not null"`
	TimeLock     int64  `gorm:"not null;default:0"` // seconds
	Status       string `gorm:"size:16;not null"`
	DeployTxHash string `gorm:"size:128"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Signer struct {
	ID          string `gorm:"primaryKey;size:36"`
	VaultID     string `gorm:"size:36;not null;uniqueIndex:idx_vault_signer,priority:1"`
	Address     string `gorm:"size:64;not null;uniqueIndex:idx_vault_signer,priority:2;index"`
	Nickname    string `gorm:"size:255"`
	Role        string `gorm:"size:16;not null"`
	CanInitiate bool   `gorm:"not null;default:true"`
	CanVote     bool   `gorm:"not null;default:true"`
	CanExecute  bool   `gorm:"not null;default:true"`
	Status      string `gorm:"size:16;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Proposal struct {
	ID            string `gorm:"primaryKey;size:36"`
	VaultID       string `gorm:"size:36;not null;uniqueIndex:idx_vault_proposal_index,priority:1;index"`
	ProposalIndex int64  `gorm:"not null;uniqueIndex:idx_vault_proposal_index,priority:2"`
	Title         string `gorm:"size:255;not null"`
	Description   string `gorm:"type:text"`
	TxType        string `gorm:"size:32;not null"`

	ToAddress      string `gorm:"size:64"`
	Amount         string `gorm:"size:100"` // base units, decimal string
	TokenAddress   string `gorm:"size:64"`
	TokenDecimals  int    `gorm:"not null;default:0"`
	NewThreshold   int    `gorm:"not null;default:0"`
	SignerToAdd    string `gorm:"size:64"`
	SignerToRemove string `gorm:"size:64"`
	RawPayload     string `gorm:"type:text"` // hex encoded, custom tx type

	TxHash string `gorm:"size:66"` // canonical hash, evm family only

	ApprovalsRequired  int    `gorm:"not null"`
	ApprovalsReceived  int    `gorm:"not null;default:0"`
	RejectionsReceived int    `gorm:"not null;default:0"`
	Status             string `gorm:"size:16;not null"`
	CreatedBy          string `gorm:"size:64;not null"`
	ExecutedBy         string `gorm:"size:64"`
	ExecutedTxHash     string `gorm:"size:128"`

	// Bumped on every tally write; guards the read-tally/write-tally sequence.
	Version   int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Vote struct {
	ID            string `gorm:"primaryKey;size:36"`
	ProposalID    string `gorm:"size:36;not null;uniqueIndex:idx_proposal_signer,priority:1"`
	VaultID       string `gorm:"size:36;not null;index"`
	SignerAddress string `gorm:"size:64;not null;uniqueIndex:idx_proposal_signer,priority:2"`
	Vote          string `gorm:"size:8;not null"`
	Signature     string `gorm:"type:text"`
	CreatedAt     time.Time
}

type ActivityLog struct {
	ID           string `gorm:"primaryKey;size:36"`
	VaultID      string `gorm:"size:36;not null;index"`
	EventType    string `gorm:"size:32;not null"`
	ActorAddress string `gorm:"size:64"`
	EventData    string `gorm:"type:text"` // marshaled JSON
	TxHash       string `gorm:"size:128"`
	CreatedAt    time.Time
}
