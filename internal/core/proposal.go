package core

import (
	"context"
	"errors"
	"fmt"

	"covault/internal/chain"
	"covault/internal/db"
	"covault/internal/repository"

	"github.com/google/uuid"
)

// Concurrent creators can race to the same index; the unique (vault, index)
// constraint catches the loser, which recounts and tries again.
const maxIndexRetries = 3

// CreateProposal registers a candidate action on an active vault. The
// per-vault proposal index is monotonic starting at 1 and the vault threshold
// is snapshotted into ApprovalsRequired. For evm vaults the canonical
// transaction hash is computed and persisted so any signer can independently
// recompute it from the visible proposal fields; solana vaults rely on the
// (multisig, index) pair instead. Construction failures persist nothing.
func (c *Covault) CreateProposal(ctx context.Context, cfg CreateProposalConfig) (ProposalRecord, error) {
	vault, err := c.getVault(ctx, cfg.VaultID)
	if err != nil {
		return ProposalRecord{}, err
	}
	if vault.Status != VaultStatusActive {
		return ProposalRecord{}, fmt.Errorf("%w: vault %q is %s", ErrVaultNotActive, vault.ID, vault.Status)
	}

	family := chain.Family(vault.ChainFamily)
	createdBy := normalizeAddress(family, cfg.CreatedBy)

	proposer, err := c.repo.GetSignerByAddress(ctx, vault.ID, createdBy)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ProposalRecord{}, fmt.Errorf("%w: %q is not a signer of vault %q", ErrUnauthorized, cfg.CreatedBy, vault.ID)
		}
		return ProposalRecord{}, fmt.Errorf("get signer: %w", err)
	}
	if proposer.Status != SignerStatusActive || !proposer.CanInitiate {
		return ProposalRecord{}, fmt.Errorf("%w: %q may not initiate proposals", ErrUnauthorized, cfg.CreatedBy)
	}

	adapter, err := c.chains.ForFamily(family)
	if err != nil {
		return ProposalRecord{}, fmt.Errorf("%w: chain family %q", ErrUnsupportedChain, vault.ChainFamily)
	}

	var proposal repository.Proposal
	for attempt := 1; ; attempt++ {
		count, err := c.repo.CountProposals(ctx, vault.ID)
		if err != nil {
			return ProposalRecord{}, fmt.Errorf("count proposals: %w", err)
		}
		proposalIndex := count + 1

		unsigned, err := adapter.BuildTransaction(chain.TxSpec{
			ChainID:        vault.ChainID,
			VaultAddress:   vault.VaultAddress,
			TxType:         cfg.TxType,
			ToAddress:      cfg.ToAddress,
			Amount:         cfg.Amount,
			TokenAddress:   cfg.TokenAddress,
			TokenDecimals:  cfg.TokenDecimals,
			NewThreshold:   cfg.NewThreshold,
			SignerToAdd:    cfg.SignerToAdd,
			SignerToRemove: cfg.SignerToRemove,
			RawPayload:     cfg.RawPayload,
			ProposalIndex:  proposalIndex,
		})
		if err != nil {
			return ProposalRecord{}, mapChainErr(err)
		}

		proposal = repository.Proposal{
			ID:                uuid.NewString(),
			VaultID:           vault.ID,
			ProposalIndex:     proposalIndex,
			Title:             cfg.Title,
			Description:       cfg.Description,
			TxType:            cfg.TxType,
			ToAddress:         cfg.ToAddress,
			Amount:            cfg.Amount,
			TokenAddress:      cfg.TokenAddress,
			TokenDecimals:     cfg.TokenDecimals,
			NewThreshold:      cfg.NewThreshold,
			SignerToAdd:       cfg.SignerToAdd,
			SignerToRemove:    cfg.SignerToRemove,
			RawPayload:        cfg.RawPayload,
			TxHash:            unsigned.Hash,
			ApprovalsRequired: vault.Threshold,
			Status:            ProposalStatusPending,
			CreatedBy:         createdBy,
		}

		err = c.repo.CreateProposal(ctx, &proposal)
		if err == nil {
			break
		}
		if errors.Is(err, db.ErrDuplicate) {
			if attempt < maxIndexRetries {
				c.logs.Infow("proposal index conflict, retrying",
					"vault_id", vault.ID,
					"proposal_index", proposalIndex,
					"attempt", attempt)
				continue
			}
			return ProposalRecord{}, fmt.Errorf("%w: proposal index %d already taken", ErrInvalidState, proposalIndex)
		}
		return ProposalRecord{}, err
	}

	c.logs.Infow("proposal created",
		"vault_id", vault.ID,
		"proposal_id", proposal.ID,
		"proposal_index", proposal.ProposalIndex,
		"tx_type", proposal.TxType,
		"approvals_required", proposal.ApprovalsRequired)

	c.logActivity(ctx, vault.ID, "proposal_created", createdBy, "", map[string]any{
		"proposal_id":    proposal.ID,
		"proposal_index": proposal.ProposalIndex,
		"tx_type":        proposal.TxType,
		"tx_hash":        proposal.TxHash,
	})

	return proposalToRecord(proposal), nil
}
