package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"covault/internal/chain"
	"covault/internal/db"
	"covault/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	activityDefaultLimit = 50
	activityMaxLimit     = 200
)

// Covault runs the vault governance state machine: vault lifecycle, signer
// registry, proposals, voting and execution preparation. Chain specifics stay
// behind the injected adapter registry.
type Covault struct {
	logs   *zap.SugaredLogger
	repo   Repository
	chains AdapterRegistry
}

func NewCovault(logger *zap.SugaredLogger, repo Repository, chains AdapterRegistry) *Covault {
	return &Covault{
		logs:   logger,
		repo:   repo,
		chains: chains,
	}
}

// GetVault returns a single vault by id.
func (c *Covault) GetVault(ctx context.Context, vaultID string) (VaultRecord, error) {
	vault, err := c.getVault(ctx, vaultID)
	if err != nil {
		return VaultRecord{}, err
	}
	return vaultToRecord(vault), nil
}

// GetVaultsBySigner lists vaults the address is an active signer of.
func (c *Covault) GetVaultsBySigner(ctx context.Context, address string) ([]VaultRecord, error) {
	vaults, err := c.repo.GetVaultsBySigner(ctx, strings.ToLower(address))
	if err != nil {
		return nil, fmt.Errorf("get vaults by signer: %w", err)
	}
	// solana addresses are case-sensitive; retry verbatim when the lowered
	// lookup finds nothing and the input was mixed case.
	if len(vaults) == 0 && address != strings.ToLower(address) {
		vaults, err = c.repo.GetVaultsBySigner(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("get vaults by signer: %w", err)
		}
	}
	records := make([]VaultRecord, len(vaults))
	for i, v := range vaults {
		records[i] = vaultToRecord(v)
	}
	return records, nil
}

// GetSigners lists all signer slots of a vault, removed ones included.
func (c *Covault) GetSigners(ctx context.Context, vaultID string) ([]SignerRecord, error) {
	if _, err := c.getVault(ctx, vaultID); err != nil {
		return nil, err
	}
	signers, err := c.repo.GetSigners(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("get signers: %w", err)
	}
	records := make([]SignerRecord, len(signers))
	for i, s := range signers {
		records[i] = signerToRecord(s)
	}
	return records, nil
}

// GetProposals lists a vault's proposals, newest first.
func (c *Covault) GetProposals(ctx context.Context, vaultID string) ([]ProposalRecord, error) {
	if _, err := c.getVault(ctx, vaultID); err != nil {
		return nil, err
	}
	proposals, err := c.repo.GetProposalsByVault(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("get proposals: %w", err)
	}
	records := make([]ProposalRecord, len(proposals))
	for i, p := range proposals {
		records[i] = proposalToRecord(p)
	}
	return records, nil
}

// GetProposal returns a single proposal by id.
func (c *Covault) GetProposal(ctx context.Context, proposalID string) (ProposalRecord, error) {
	proposal, err := c.getProposal(ctx, proposalID)
	if err != nil {
		return ProposalRecord{}, err
	}
	return proposalToRecord(proposal), nil
}

// GetVotes lists the votes cast on a proposal in cast order.
func (c *Covault) GetVotes(ctx context.Context, proposalID string) ([]VoteRecord, error) {
	if _, err := c.getProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	votes, err := c.repo.GetVotesByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("get votes: %w", err)
	}
	records := make([]VoteRecord, len(votes))
	for i, v := range votes {
		records[i] = voteToRecord(v)
	}
	return records, nil
}

// GetActivity returns the most recent audit entries for a vault.
func (c *Covault) GetActivity(ctx context.Context, vaultID string, limit int) ([]ActivityRecord, error) {
	if _, err := c.getVault(ctx, vaultID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = activityDefaultLimit
	}
	if limit > activityMaxLimit {
		limit = activityMaxLimit
	}
	entries, err := c.repo.GetActivityByVault(ctx, vaultID, limit)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	records := make([]ActivityRecord, len(entries))
	for i, e := range entries {
		records[i] = activityToRecord(e)
	}
	return records, nil
}

func (c *Covault) getVault(ctx context.Context, vaultID string) (repository.Vault, error) {
	vault, err := c.repo.GetVault(ctx, vaultID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return repository.Vault{}, fmt.Errorf("%w: vault %q", ErrNotFound, vaultID)
		}
		return repository.Vault{}, fmt.Errorf("get vault: %w", err)
	}
	return vault, nil
}

func (c *Covault) getProposal(ctx context.Context, proposalID string) (repository.Proposal, error) {
	proposal, err := c.repo.GetProposal(ctx, proposalID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return repository.Proposal{}, fmt.Errorf("%w: proposal %q", ErrNotFound, proposalID)
		}
		return repository.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}
	return proposal, nil
}

// normalizeAddress canonicalizes addresses for storage and comparison:
// case-insensitive on the evm family, exact everywhere else.
func normalizeAddress(family chain.Family, address string) string {
	if family == chain.FamilyEVM {
		return strings.ToLower(address)
	}
	return address
}

// mapChainErr translates adapter sentinels into the governance taxonomy.
func mapChainErr(err error) error {
	switch {
	case errors.Is(err, chain.ErrUnsupportedChain):
		return fmt.Errorf("%w: %v", ErrUnsupportedChain, err)
	case errors.Is(err, chain.ErrInvalidConfig):
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	case errors.Is(err, chain.ErrInvalidTransaction):
		return fmt.Errorf("%w: %v", ErrInvalidProposal, err)
	}
	return err
}

// logActivity appends an audit entry. Append failures are logged, not
// propagated; the audit trail is best-effort relative to the committed write.
func (c *Covault) logActivity(ctx context.Context, vaultID, eventType, actor, txHash string, eventData map[string]any) {
	data, err := json.Marshal(eventData)
	if err != nil {
		c.logs.Errorw("marshal activity event data", "error", err, "event_type", eventType)
		data = []byte("{}")
	}

	entry := repository.ActivityLog{
		ID:           uuid.NewString(),
		VaultID:      vaultID,
		EventType:    eventType,
		ActorAddress: actor,
		EventData:    string(data),
		TxHash:       txHash,
	}
	if err := c.repo.AppendActivity(ctx, &entry); err != nil {
		c.logs.Errorw("append activity entry", "error", err, "vault_id", vaultID, "event_type", eventType)
	}
}
