package core

import (
	"time"

	"covault/internal/chain"
	"covault/internal/repository"
)

const (
	VaultStatusPending = "pending"
	VaultStatusActive  = "active"

	SignerStatusActive  = "active"
	SignerStatusRemoved = "removed"

	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
	ProposalStatusExecuted = "executed"

	VoteApprove = "approve"
	VoteReject  = "reject"

	RoleOwner  = "owner"
	RoleSigner = "signer"
)

type SignerConfig struct {
	Address     string
	Nickname    string
	Role        string
	CanInitiate bool
	CanVote     bool
	CanExecute  bool
}

type CreateVaultConfig struct {
	OwnerAddress string
	Name         string
	Description  string
	ChainFamily  chain.Family
	ChainID      string

	CreateKey       string // solana
	DeploymentSalt  string // evm
	ContractVersion string // evm

	Threshold int
	TimeLock  int64
	Signers   []SignerConfig
}

type CreateProposalConfig struct {
	VaultID     string
	Title       string
	Description string
	TxType      string
	CreatedBy   string

	ToAddress      string
	Amount         string
	TokenAddress   string
	TokenDecimals  int
	NewThreshold   int
	SignerToAdd    string
	SignerToRemove string
	RawPayload     string
}

type VaultRecord struct {
	ID           string
	OwnerAddress string
	Name         string
	Description  string
	ChainFamily  chain.Family
	ChainID      string
	VaultAddress string
	Threshold    int
	TimeLock     int64
	Status       string
	DeployTxHash string
	CreatedAt    time.Time
}

type SignerRecord struct {
	VaultID     string
	Address     string
	Nickname    string
	Role        string
	CanInitiate bool
	CanVote     bool
	CanExecute  bool
	Status      string
}

type ProposalRecord struct {
	ID            string
	VaultID       string
	ProposalIndex int64
	Title         string
	Description   string
	TxType        string
	TxHash        string

	ToAddress      string
	Amount         string
	TokenAddress   string
	TokenDecimals  int
	NewThreshold   int
	SignerToAdd    string
	SignerToRemove string
	RawPayload     string

	ApprovalsRequired  int
	ApprovalsReceived  int
	RejectionsReceived int
	Status             string
	CreatedBy          string
	ExecutedBy         string
	ExecutedTxHash     string
	CreatedAt          time.Time
}

type VoteRecord struct {
	ProposalID    string
	VaultID       string
	SignerAddress string
	Vote          string
	HasSignature  bool
	CreatedAt     time.Time
}

type ActivityRecord struct {
	VaultID      string
	EventType    string
	ActorAddress string
	EventData    string
	TxHash       string
	CreatedAt    time.Time
}

// VoteResult carries the post-vote tallies and transition outcome.
type VoteResult struct {
	ProposalID         string
	ApprovalsReceived  int
	RejectionsReceived int
	ApprovalsRequired  int
	Status             string
	CanExecute         bool
}

type CollectedSignature struct {
	SignerAddress string
	Signature     string
}

// ExecutionPackage is the final chain-specific payload plus the filtered
// signature set, ready for external signing and broadcast.
type ExecutionPackage struct {
	ProposalID  string
	Transaction chain.UnsignedTx
	Signatures  []CollectedSignature
	Threshold   int
}

func vaultToRecord(v repository.Vault) VaultRecord {
	return VaultRecord{
		ID:           v.ID,
		OwnerAddress: v.OwnerAddress,
		Name:         v.Name,
		Description:  v.Description,
		ChainFamily:  chain.Family(v.ChainFamily),
		ChainID:      v.ChainID,
		VaultAddress: v.VaultAddress,
		Threshold:    v.Threshold,
		TimeLock:     v.TimeLock,
		Status:       v.Status,
		DeployTxHash: v.DeployTxHash,
		CreatedAt:    v.CreatedAt,
	}
}

func signerToRecord(s repository.Signer) SignerRecord {
	return SignerRecord{
		VaultID:     s.VaultID,
		Address:     s.Address,
		Nickname:    s.Nickname,
		Role:        s.Role,
		CanInitiate: s.CanInitiate,
		CanVote:     s.CanVote,
		CanExecute:  s.CanExecute,
		Status:      s.Status,
	}
}

func proposalToRecord(p repository.Proposal) ProposalRecord {
	return ProposalRecord{
		ID:                 p.ID,
		VaultID:            p.VaultID,
		ProposalIndex:      p.ProposalIndex,
		Title:              p.Title,
		Description:        p.Description,
		TxType:             p.TxType,
		TxHash:             p.TxHash,
		ToAddress:          p.ToAddress,
		Amount:             p.Amount,
		TokenAddress:       p.TokenAddress,
		TokenDecimals:      p.TokenDecimals,
		NewThreshold:       p.NewThreshold,
		SignerToAdd:        p.SignerToAdd,
		SignerToRemove:     p.SignerToRemove,
		RawPayload:         p.RawPayload,
		ApprovalsRequired:  p.ApprovalsRequired,
		ApprovalsReceived:  p.ApprovalsReceived,
		RejectionsReceived: p.RejectionsReceived,
		Status:             p.Status,
		CreatedBy:          p.CreatedBy,
		ExecutedBy:         p.ExecutedBy,
		ExecutedTxHash:     p.ExecutedTxHash,
		CreatedAt:          p.CreatedAt,
	}
}

func voteToRecord(v repository.Vote) VoteRecord {
	return VoteRecord{
		ProposalID:    v.ProposalID,
		VaultID:       v.VaultID,
		SignerAddress: v.SignerAddress,
		Vote:          v.Vote,
		HasSignature:  v.Signature != "",
		CreatedAt:     v.CreatedAt,
	}
}

func activityToRecord(e repository.ActivityLog) ActivityRecord {
	return ActivityRecord{
		VaultID:      e.VaultID,
		EventType:    e.EventType,
		ActorAddress: e.ActorAddress,
		EventData:    e.EventData,
		TxHash:       e.TxHash,
		CreatedAt:    e.CreatedAt,
	}
}
