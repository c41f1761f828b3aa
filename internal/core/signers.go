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

// AddSigner adds an authorization slot to a vault. When the address already
// exists in removed state the existing row is reactivated instead of
// duplicated; an address that is already active is rejected.
func (c *Covault) AddSigner(ctx context.Context, vaultID string, cfg SignerConfig, actorAddress string) (SignerRecord, error) {
	vault, err := c.getVault(ctx, vaultID)
	if err != nil {
		return SignerRecord{}, err
	}

	address := normalizeAddress(chain.Family(vault.ChainFamily), cfg.Address)
	if address == "" {
		return SignerRecord{}, fmt.Errorf("%w: signer address is empty", ErrInvalidConfiguration)
	}

	role := cfg.Role
	if role == "" {
		role = RoleSigner
	}

	existing, err := c.repo.GetSignerByAddress(ctx, vaultID, address)
	switch {
	case err == nil && existing.Status == SignerStatusActive:
		return SignerRecord{}, fmt.Errorf("%w: signer %q is already active", ErrInvalidConfiguration, address)

	case err == nil:
		existing.Nickname = cfg.Nickname
		existing.Role = role
		existing.CanInitiate = cfg.CanInitiate
		existing.CanVote = cfg.CanVote
		existing.CanExecute = cfg.CanExecute
		existing.Status = SignerStatusActive
		if err := c.repo.SaveSigner(ctx, &existing); err != nil {
			return SignerRecord{}, err
		}

	case errors.Is(err, db.ErrNotFound):
		existing = repository.Signer{
			ID:          uuid.NewString(),
			VaultID:     vaultID,
			Address:     address,
			Nickname:    cfg.Nickname,
			Role:        role,
			CanInitiate: cfg.CanInitiate,
			CanVote:     cfg.CanVote,
			CanExecute:  cfg.CanExecute,
			Status:      SignerStatusActive,
		}
		if err := c.repo.SaveSigner(ctx, &existing); err != nil {
			return SignerRecord{}, err
		}

	default:
		return SignerRecord{}, fmt.Errorf("get signer: %w", err)
	}

	c.logs.Infow("signer added", "vault_id", vaultID, "address", address, "role", role)
	c.logActivity(ctx, vaultID, "signer_added", actorAddress, "", map[string]any{
		"address": address,
		"role":    role,
	})

	return signerToRecord(existing), nil
}

// RemoveSigner soft-deletes an active signer. In-flight proposals keep their
// threshold snapshot and already-cast votes. Removal that would leave fewer
// active signers than the vault threshold is rejected.
func (c *Covault) RemoveSigner(ctx context.Context, vaultID, address, actorAddress string) error {
	vault, err := c.getVault(ctx, vaultID)
	if err != nil {
		return err
	}

	normalized := normalizeAddress(chain.Family(vault.ChainFamily), address)
	signer, err := c.repo.GetSignerByAddress(ctx, vaultID, normalized)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: signer %q", ErrNotFound, address)
		}
		return fmt.Errorf("get signer: %w", err)
	}
	if signer.Status != SignerStatusActive {
		return fmt.Errorf("%w: signer %q is not active", ErrNotFound, address)
	}

	active, err := c.repo.GetActiveSigners(ctx, vaultID)
	if err != nil {
		return fmt.Errorf("get active signers: %w", err)
	}
	if len(active)-1 < vault.Threshold {
		return fmt.Errorf("%w: removing %q leaves %d active signers below threshold %d",
			ErrInvalidConfiguration, address, len(active)-1, vault.Threshold)
	}

	signer.Status = SignerStatusRemoved
	if err := c.repo.SaveSigner(ctx, &signer); err != nil {
		return err
	}

	c.logs.Infow("signer removed", "vault_id", vaultID, "address", normalized)
	c.logActivity(ctx, vaultID, "signer_removed", actorAddress, "", map[string]any{
		"address": normalized,
	})

	return nil
}

// UpdateThreshold changes the vault threshold. Proposals created before the
// change keep their snapshot; only later proposals see the new value.
func (c *Covault) UpdateThreshold(ctx context.Context, vaultID string, newThreshold int, actorAddress string) (VaultRecord, error) {
	vault, err := c.getVault(ctx, vaultID)
	if err != nil {
		return VaultRecord{}, err
	}

	active, err := c.repo.GetActiveSigners(ctx, vaultID)
	if err != nil {
		return VaultRecord{}, fmt.Errorf("get active signers: %w", err)
	}

	if newThreshold < 1 || newThreshold > len(active) {
		return VaultRecord{}, fmt.Errorf("%w: threshold %d out of bounds for %d active signers",
			ErrInvalidConfiguration, newThreshold, len(active))
	}

	oldThreshold := vault.Threshold
	vault.Threshold = newThreshold
	if err := c.repo.SaveVault(ctx, &vault); err != nil {
		return VaultRecord{}, err
	}

	c.logs.Infow("threshold updated", "vault_id", vaultID, "old", oldThreshold, "new", newThreshold)
	c.logActivity(ctx, vaultID, "threshold_updated", actorAddress, "", map[string]any{
		"old_threshold": oldThreshold,
		"new_threshold": newThreshold,
	})

	return vaultToRecord(vault), nil
}
