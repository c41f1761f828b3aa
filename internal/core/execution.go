package core

import (
	"context"
	"errors"
	"fmt"

	"covault/internal/chain"
	"covault/internal/db"
)

// PrepareExecution assembles the final chain-specific payload for an approved
// proposal. Collected approve-signatures are normalized, stripped of signers
// that are no longer active, deduplicated (first occurrence wins) and checked
// against the vault's current threshold. The call is a pure read+compute
// projection with no persistence side effects, so it is safely retryable.
func (c *Covault) PrepareExecution(ctx context.Context, proposalID, executorAddress string) (ExecutionPackage, error) {
	proposal, err := c.getProposal(ctx, proposalID)
	if err != nil {
		return ExecutionPackage{}, err
	}
	if proposal.Status != ProposalStatusApproved {
		return ExecutionPackage{}, fmt.Errorf("%w: proposal %q is %s", ErrInvalidState, proposalID, proposal.Status)
	}

	vault, err := c.getVault(ctx, proposal.VaultID)
	if err != nil {
		return ExecutionPackage{}, err
	}
	family := chain.Family(vault.ChainFamily)

	executor, err := c.repo.GetSignerByAddress(ctx, vault.ID, normalizeAddress(family, executorAddress))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ExecutionPackage{}, fmt.Errorf("%w: %q is not a signer of vault %q", ErrUnauthorized, executorAddress, vault.ID)
		}
		return ExecutionPackage{}, fmt.Errorf("get signer: %w", err)
	}
	if executor.Status != SignerStatusActive || !executor.CanExecute {
		return ExecutionPackage{}, fmt.Errorf("%w: %q may not execute on vault %q", ErrUnauthorized, executorAddress, vault.ID)
	}

	active, err := c.repo.GetActiveSigners(ctx, vault.ID)
	if err != nil {
		return ExecutionPackage{}, fmt.Errorf("get active signers: %w", err)
	}
	authorized := make(map[string]struct{}, len(active))
	for _, s := range active {
		authorized[normalizeAddress(family, s.Address)] = struct{}{}
	}

	votes, err := c.repo.GetVotesByProposal(ctx, proposalID)
	if err != nil {
		return ExecutionPackage{}, fmt.Errorf("get votes: %w", err)
	}

	seen := make(map[string]struct{}, len(votes))
	signatures := make([]CollectedSignature, 0, len(votes))
	for _, v := range votes {
		if v.Vote != VoteApprove || v.Signature == "" {
			continue
		}
		address := normalizeAddress(family, v.SignerAddress)
		if _, ok := authorized[address]; !ok {
			// signer removed after voting; their signature no longer counts
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		signatures = append(signatures, CollectedSignature{
			SignerAddress: address,
			Signature:     v.Signature,
		})
	}

	if len(signatures) < vault.Threshold {
		return ExecutionPackage{}, fmt.Errorf("%w: %d/%d collected", ErrInsufficientSignatures, len(signatures), vault.Threshold)
	}

	adapter, err := c.chains.ForFamily(family)
	if err != nil {
		return ExecutionPackage{}, fmt.Errorf("%w: chain family %q", ErrUnsupportedChain, vault.ChainFamily)
	}

	unsigned, err := adapter.BuildTransaction(chain.TxSpec{
		ChainID:        vault.ChainID,
		VaultAddress:   vault.VaultAddress,
		TxType:         proposal.TxType,
		ToAddress:      proposal.ToAddress,
		Amount:         proposal.Amount,
		TokenAddress:   proposal.TokenAddress,
		TokenDecimals:  proposal.TokenDecimals,
		NewThreshold:   proposal.NewThreshold,
		SignerToAdd:    proposal.SignerToAdd,
		SignerToRemove: proposal.SignerToRemove,
		RawPayload:     proposal.RawPayload,
		ProposalIndex:  proposal.ProposalIndex,
	})
	if err != nil {
		return ExecutionPackage{}, mapChainErr(err)
	}

	c.logs.Infow("execution prepared",
		"proposal_id", proposalID,
		"executor", executorAddress,
		"signatures", len(signatures),
		"threshold", vault.Threshold)

	return ExecutionPackage{
		ProposalID:  proposalID,
		Transaction: unsigned,
		Signatures:  signatures,
		Threshold:   vault.Threshold,
	}, nil
}

// MarkExecuted records the external execution transaction and moves the
// proposal to its terminal state. Only approved proposals may transition;
// re-marking an executed proposal is rejected so the execution record is
// never overwritten.
func (c *Covault) MarkExecuted(ctx context.Context, proposalID, executedBy, txHash string) (ProposalRecord, error) {
	proposal, err := c.getProposal(ctx, proposalID)
	if err != nil {
		return ProposalRecord{}, err
	}

	vault, err := c.getVault(ctx, proposal.VaultID)
	if err != nil {
		return ProposalRecord{}, err
	}
	executedBy = normalizeAddress(chain.Family(vault.ChainFamily), executedBy)

	err = c.repo.MarkProposalExecuted(ctx, proposalID, executedBy, txHash)
	if err != nil {
		if errors.Is(err, db.ErrStaleRecord) {
			// re-read for the actual state; the guard lost to either a
			// concurrent execution or a non-approved status
			current, readErr := c.getProposal(ctx, proposalID)
			if readErr != nil {
				return ProposalRecord{}, readErr
			}
			return ProposalRecord{}, fmt.Errorf("%w: proposal %q is %s", ErrInvalidState, proposalID, current.Status)
		}
		return ProposalRecord{}, err
	}

	c.logs.Infow("proposal executed", "proposal_id", proposalID, "executed_by", executedBy, "tx_hash", txHash)
	c.logActivity(ctx, proposal.VaultID, "proposal_executed", executedBy, txHash, map[string]any{
		"proposal_id":    proposalID,
		"proposal_index": proposal.ProposalIndex,
	})

	updated, err := c.getProposal(ctx, proposalID)
	if err != nil {
		return ProposalRecord{}, err
	}
	return proposalToRecord(updated), nil
}
