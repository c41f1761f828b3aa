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

// Retries for the tally compare-and-swap when concurrent votes on the same
// proposal collide. Each retry re-reads the proposal and recomputes the
// transition, so no vote is ever applied against stale tallies.
const maxTallyRetries = 3

// VoteOnProposal records one signer's position. A proposal transitions to
// approved when approvals reach the snapshot threshold, and to rejected when
// the threshold can no longer mathematically be reached.
func (c *Covault) VoteOnProposal(ctx context.Context, proposalID, signerAddress, vote, signature string) (VoteResult, error) {
	if vote != VoteApprove && vote != VoteReject {
		return VoteResult{}, fmt.Errorf("%w: vote must be %q or %q", ErrInvalidState, VoteApprove, VoteReject)
	}

	for attempt := 0; ; attempt++ {
		result, err := c.tryVote(ctx, proposalID, signerAddress, vote, signature)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, db.ErrStaleRecord) && attempt < maxTallyRetries {
			c.logs.Infow("vote tally conflict, retrying", "proposal_id", proposalID, "attempt", attempt+1)
			continue
		}
		return VoteResult{}, err
	}
}

func (c *Covault) tryVote(ctx context.Context, proposalID, signerAddress, vote, signature string) (VoteResult, error) {
	proposal, err := c.getProposal(ctx, proposalID)
	if err != nil {
		return VoteResult{}, err
	}
	if proposal.Status != ProposalStatusPending {
		return VoteResult{}, fmt.Errorf("%w: proposal %q is %s", ErrInvalidState, proposalID, proposal.Status)
	}

	vault, err := c.getVault(ctx, proposal.VaultID)
	if err != nil {
		return VoteResult{}, err
	}
	address := normalizeAddress(chain.Family(vault.ChainFamily), signerAddress)

	signer, err := c.repo.GetSignerByAddress(ctx, vault.ID, address)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return VoteResult{}, fmt.Errorf("%w: %q is not a signer of vault %q", ErrUnauthorized, signerAddress, vault.ID)
		}
		return VoteResult{}, fmt.Errorf("get signer: %w", err)
	}
	if signer.Status != SignerStatusActive || !signer.CanVote {
		return VoteResult{}, fmt.Errorf("%w: %q may not vote on vault %q", ErrUnauthorized, signerAddress, vault.ID)
	}

	if _, err := c.repo.GetVoteBySigner(ctx, proposalID, address); err == nil {
		return VoteResult{}, fmt.Errorf("%w: %q on proposal %q", ErrDuplicateVote, signerAddress, proposalID)
	} else if !errors.Is(err, db.ErrNotFound) {
		return VoteResult{}, fmt.Errorf("get vote: %w", err)
	}

	active, err := c.repo.GetActiveSigners(ctx, vault.ID)
	if err != nil {
		return VoteResult{}, fmt.Errorf("get active signers: %w", err)
	}

	expectedVersion := proposal.Version
	if vote == VoteApprove {
		proposal.ApprovalsReceived++
	} else {
		proposal.RejectionsReceived++
	}
	proposal.Status = nextStatus(proposal.ApprovalsReceived, proposal.RejectionsReceived, proposal.ApprovalsRequired, len(active))

	voteRow := repository.Vote{
		ID:            uuid.NewString(),
		ProposalID:    proposalID,
		VaultID:       vault.ID,
		SignerAddress: address,
		Vote:          vote,
		Signature:     signature,
	}

	err = c.repo.RecordVote(ctx, &voteRow, &proposal, expectedVersion)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return VoteResult{}, fmt.Errorf("%w: %q on proposal %q", ErrDuplicateVote, signerAddress, proposalID)
		}
		return VoteResult{}, err
	}

	c.logs.Infow("vote cast",
		"proposal_id", proposalID,
		"signer", address,
		"vote", vote,
		"approvals", proposal.ApprovalsReceived,
		"rejections", proposal.RejectionsReceived,
		"status", proposal.Status)

	c.logActivity(ctx, vault.ID, "vote_cast", address, "", map[string]any{
		"proposal_id": proposalID,
		"vote":        vote,
		"approvals":   proposal.ApprovalsReceived,
		"rejections":  proposal.RejectionsReceived,
		"status":      proposal.Status,
	})

	return VoteResult{
		ProposalID:         proposalID,
		ApprovalsReceived:  proposal.ApprovalsReceived,
		RejectionsReceived: proposal.RejectionsReceived,
		ApprovalsRequired:  proposal.ApprovalsRequired,
		Status:             proposal.Status,
		CanExecute:         proposal.Status == ProposalStatusApproved,
	}, nil
}

// nextStatus evaluates the one-way transition rule after a tally change.
// Rejection triggers once approval can no longer be reached even if every
// remaining active signer approves.
func nextStatus(approvals, rejections, required, activeSigners int) string {
	if approvals >= required {
		return ProposalStatusApproved
	}
	if rejections > activeSigners-required {
		return ProposalStatusRejected
	}
	return ProposalStatusPending
}
