package core

import (
	"context"

	"covault/internal/chain"
	"covault/internal/repository"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name Repository . Repository
type Repository interface {
	CreateVaultWithSigners(ctx context.Context, vault *repository.Vault, signers []repository.Signer) error
	GetVault(ctx context.Context, vaultID string) (repository.Vault, error)
	SaveVault(ctx context.Context, vault *repository.Vault) error
	GetVaultsBySigner(ctx context.Context, address string) ([]repository.Vault, error)

	GetSigners(ctx context.Context, vaultID string) ([]repository.Signer, error)
	GetActiveSigners(ctx context.Context, vaultID string) ([]repository.Signer, error)
	GetSignerByAddress(ctx context.Context, vaultID, address string) (repository.Signer, error)
	SaveSigner(ctx context.Context, signer *repository.Signer) error

	CountProposals(ctx context.Context, vaultID string) (int64, error)
	CreateProposal(ctx context.Context, proposal *repository.Proposal) error
	GetProposal(ctx context.Context, proposalID string) (repository.Proposal, error)
	GetProposalsByVault(ctx context.Context, vaultID string) ([]repository.Proposal, error)

	GetVotesByProposal(ctx context.Context, proposalID string) ([]repository.Vote, error)
	GetVoteBySigner(ctx context.Context, proposalID, signerAddress string) (repository.Vote, error)
	RecordVote(ctx context.Context, vote *repository.Vote, proposal *repository.Proposal, expectedVersion int) error
	MarkProposalExecuted(ctx context.Context, proposalID, executedBy, txHash string) error

	AppendActivity(ctx context.Context, entry *repository.ActivityLog) error
	GetActivityByVault(ctx context.Context, vaultID string, limit int) ([]repository.ActivityLog, error)
}

//counterfeiter:generate -o fake -fake-name AdapterRegistry . AdapterRegistry
type AdapterRegistry interface {
	ForFamily(family chain.Family) (chain.Adapter, error)
}
