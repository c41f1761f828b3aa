package handler

import (
	"context"
	"net/http"

	"covault/internal/chain"
	"covault/internal/core"
	tokenIssuer "covault/pkg/jwt"

	"github.com/golang-jwt/jwt"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

//counterfeiter:generate -o fake -fake-name GovernanceService . GovernanceService
type GovernanceService interface {
	CreateVault(ctx context.Context, cfg core.CreateVaultConfig) (core.CreateVaultResult, error)
	PrepareDeployment(ctx context.Context, vaultID, deployerAddress string) (chain.Deployment, error)
	ActivateVault(ctx context.Context, vaultID, txHash string) (core.VaultRecord, error)
	GetVault(ctx context.Context, vaultID string) (core.VaultRecord, error)
	GetVaultsBySigner(ctx context.Context, address string) ([]core.VaultRecord, error)

	AddSigner(ctx context.Context, vaultID string, cfg core.SignerConfig, actorAddress string) (core.SignerRecord, error)
	RemoveSigner(ctx context.Context, vaultID, address, actorAddress string) error
	GetSigners(ctx context.Context, vaultID string) ([]core.SignerRecord, error)
	UpdateThreshold(ctx context.Context, vaultID string, newThreshold int, actorAddress string) (core.VaultRecord, error)

	CreateProposal(ctx context.Context, cfg core.CreateProposalConfig) (core.ProposalRecord, error)
	GetProposal(ctx context.Context, proposalID string) (core.ProposalRecord, error)
	GetProposals(ctx context.Context, vaultID string) ([]core.ProposalRecord, error)

	VoteOnProposal(ctx context.Context, proposalID, signerAddress, vote, signature string) (core.VoteResult, error)
	GetVotes(ctx context.Context, proposalID string) ([]core.VoteRecord, error)

	PrepareExecution(ctx context.Context, proposalID, executorAddress string) (core.ExecutionPackage, error)
	MarkExecuted(ctx context.Context, proposalID, executedBy, txHash string) (core.ProposalRecord, error)

	GetActivity(ctx context.Context, vaultID string, limit int) ([]core.ActivityRecord, error)
}

//counterfeiter:generate -o fake -fake-name SessionIssuer . SessionIssuer
type SessionIssuer interface {
	Generate(data tokenIssuer.TokenInfo) *jwt.Token
	Sign(token *jwt.Token) (string, error)
	Validate(token string) (jwt.MapClaims, error)
}

//counterfeiter:generate -o fake -fake-name RequestValidator . RequestValidator
type RequestValidator interface {
	DecodeAndValidateJSONPayload(r *http.Request, object any) error
}
