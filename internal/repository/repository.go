package repository

import (
	"context"
	"errors"
	"fmt"

	"covault/internal/db"

	"gorm.io/gorm"
)

type VaultRepository struct {
	db *gorm.DB
}

func NewVaultRepository(gormDB *gorm.DB) *VaultRepository {
	return &VaultRepository{
		db: gormDB,
	}
}

func (r *VaultRepository) MigrateTables() error {
	err := r.db.AutoMigrate(
		&Vault{},
		&Signer{},
		&Proposal{},
		&Vote{},
		&ActivityLog{})
	if err != nil {
		return fmt.Errorf("migrate table(s): %w", err)
	}

	return nil
}

// CreateVaultWithSigners persists the vault row together with its initial
// signer set in one transaction.
func (r *VaultRepository) CreateVaultWithSigners(ctx context.Context, vault *Vault, signers []Signer) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vault).Error; err != nil {
			return err
		}
		if err := tx.Create(&signers).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create vault with signers: %w", db.Translate(err))
	}
	return nil
}

func (r *VaultRepository) GetVault(ctx context.Context, vaultID string) (Vault, error) {
	var vault Vault
	err := r.db.WithContext(ctx).Where("id = ?", vaultID).First(&vault).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Vault{}, db.ErrNotFound
		}
		return Vault{}, fmt.Errorf("get vault by id: %w", err)
	}
	return vault, nil
}

func (r *VaultRepository) SaveVault(ctx context.Context, vault *Vault) error {
	if err := r.db.WithContext(ctx).Save(vault).Error; err != nil {
		return fmt.Errorf("save vault: %w", db.Translate(err))
	}
	return nil
}

func (r *VaultRepository) GetVaultsBySigner(ctx context.Context, address string) ([]Vault, error) {
	var vaults []Vault
	err := r.db.WithContext(ctx).
		Joins("JOIN signers ON signers.vault_id = vaults.id").
		Where("signers.address = ? AND signers.status = ?", address, "active").
		Find(&vaults).Error
	if err != nil {
		return nil, fmt.Errorf("get vaults by signer: %w", err)
	}
	return vaults, nil
}

func (r *VaultRepository) GetSigners(ctx context.Context, vaultID string) ([]Signer, error) {
	var signers []Signer
	err := r.db.WithContext(ctx).Where("vault_id = ?", vaultID).Find(&signers).Error
	if err != nil {
		return nil, fmt.Errorf("get signers: %w", err)
	}
	return signers, nil
}

func (r *VaultRepository) GetActiveSigners(ctx context.Context, vaultID string) ([]Signer, error) {
	var signers []Signer
	err := r.db.WithContext(ctx).
		Where("vault_id = ? AND status = ?", vaultID, "active").
		Find(&signers).Error
	if err != nil {
		return nil, fmt.Errorf("get active signers: %w", err)
	}
	return signers, nil
}

func (r *VaultRepository) GetSignerByAddress(ctx context.Context, vaultID, address string) (Signer, error) {
	var signer Signer
	err := r.db.WithContext(ctx).
		Where("vault_id = ? AND address = ?", vaultID, address).
		First(&signer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Signer{}, db.ErrNotFound
		}
		return Signer{}, fmt.Errorf("get signer by address: %w", err)
	}
	return signer, nil
}

func (r *VaultRepository) SaveSigner(ctx context.Context, signer *Signer) error {
	if err := r.db.WithContext(ctx).Save(signer).Error; err != nil {
		return fmt.Errorf("save signer: %w", db.Translate(err))
	}
	return nil
}

func (r *VaultRepository) CountProposals(ctx context.Context, vaultID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Proposal{}).
		Where("vault_id = ?", vaultID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count proposals: %w", err)
	}
	return count, nil
}

func (r *VaultRepository) CreateProposal(ctx context.Context, proposal *Proposal) error {
	if err := r.db.WithContext(ctx).Create(proposal).Error; err != nil {
		return fmt.Errorf("create proposal: %w", db.Translate(err))
	}
	return nil
}

func (r *VaultRepository) GetProposal(ctx context.Context, proposalID string) (Proposal, error) {
	var proposal Proposal
	err := r.db.WithContext(ctx).Where("id = ?", proposalID).First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Proposal{}, db.ErrNotFound
		}
		return Proposal{}, fmt.Errorf("get proposal by id: %w", err)
	}
	return proposal, nil
}

func (r *VaultRepository) GetProposalsByVault(ctx context.Context, vaultID string) ([]Proposal, error) {
	var proposals []Proposal
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("proposal_index DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("get proposals by vault: %w", err)
	}
	return proposals, nil
}

func (r *VaultRepository) GetVotesByProposal(ctx context.Context, proposalID string) ([]Vote, error) {
	var votes []Vote
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("get votes by proposal: %w", err)
	}
	return votes, nil
}

func (r *VaultRepository) GetVoteBySigner(ctx context.Context, proposalID, signerAddress string) (Vote, error) {
	var vote Vote
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND signer_address = ?", proposalID, signerAddress).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Vote{}, db.ErrNotFound
		}
		return Vote{}, fmt.Errorf("get vote by signer: %w", err)
	}
	return vote, nil
}

// RecordVote inserts the vote row and applies the recomputed tallies to the
// proposal in a single transaction. The proposal update is a compare-and-swap
// on the version column: when another vote committed in between, nothing is
// written (the vote row rolls back too) and db.ErrStaleRecord is returned so
// the caller can re-read and retry. A second vote by the same signer trips the
// (proposal_id, signer_address) unique index and surfaces as db.ErrDuplicate.
func (r *VaultRepository) RecordVote(ctx context.Context, vote *Vote, proposal *Proposal, expectedVersion int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return db.Translate(err)
		}

		res := tx.Model(&Proposal{}).
			Where("id = ? AND version = ?", proposal.ID, expectedVersion).
			Updates(map[string]any{
				"approvals_received":  proposal.ApprovalsReceived,
				"rejections_received": proposal.RejectionsReceived,
				"status":              proposal.Status,
				"version":             expectedVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return db.ErrStaleRecord
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) || errors.Is(err, db.ErrStaleRecord) {
			return err
		}
		return fmt.Errorf("record vote: %w", err)
	}
	return nil
}

// MarkProposalExecuted flips an approved proposal to executed. The status guard
// in the WHERE clause makes the terminal transition single-shot; zero affected
// rows means the proposal was not in approved state.
func (r *VaultRepository) MarkProposalExecuted(ctx context.Context, proposalID, executedBy, txHash string) error {
	res := r.db.WithContext(ctx).Model(&Proposal{}).
		Where("id = ? AND status = ?", proposalID, "approved").
		Updates(map[string]any{
			"status":           "executed",
			"executed_by":      executedBy,
			"executed_tx_hash": txHash,
		})
	if res.Error != nil {
		return fmt.Errorf("mark proposal executed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.ErrStaleRecord
	}
	return nil
}

func (r *VaultRepository) AppendActivity(ctx context.Context, entry *ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (r *VaultRepository) GetActivityByVault(ctx context.Context, vaultID string, limit int) ([]ActivityLog, error) {
	var entries []ActivityLog
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("get activity by vault: %w", err)
	}
	return entries, nil
}
