package core

import (
	"context"
	"fmt"
	"strings"

	"covault/internal/chain"
	"covault/internal/repository"

	"github.com/google/uuid"
)

// CreateVaultResult is the persisted vault plus the unsigned deployment
// artifact the caller must sign and broadcast externally.
type CreateVaultResult struct {
	Vault      VaultRecord
	Signers    []SignerRecord
	Deployment chain.Deployment
}

// CreateVault validates the configuration, derives the chain address and
// persists the vault with its initial signer set in pending state. Nothing is
// persisted when validation or derivation fails.
func (c *Covault) CreateVault(ctx context.Context, cfg CreateVaultConfig) (CreateVaultResult, error) {
	if len(cfg.Signers) == 0 {
		return CreateVaultResult{}, fmt.Errorf("%w: vault needs at least one signer", ErrInvalidConfiguration)
	}
	if cfg.Threshold < 1 || cfg.Threshold > len(cfg.Signers) {
		return CreateVaultResult{}, fmt.Errorf("%w: threshold %d out of bounds for %d signers",
			ErrInvalidConfiguration, cfg.Threshold, len(cfg.Signers))
	}

	seen := make(map[string]struct{}, len(cfg.Signers))
	addresses := make([]string, 0, len(cfg.Signers))
	for _, s := range cfg.Signers {
		addr := normalizeAddress(cfg.ChainFamily, s.Address)
		if _, ok := seen[addr]; ok {
			return CreateVaultResult{}, fmt.Errorf("%w: duplicate signer address %q", ErrInvalidConfiguration, s.Address)
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}

	adapter, err := c.chains.ForFamily(cfg.ChainFamily)
	if err != nil {
		return CreateVaultResult{}, fmt.Errorf("%w: chain family %q", ErrUnsupportedChain, cfg.ChainFamily)
	}

	derivationCfg := chain.DerivationConfig{
		ChainID:   cfg.ChainID,
		CreateKey: cfg.CreateKey,
		Owners:    addresses,
		Threshold: cfg.Threshold,
		Salt:      cfg.DeploymentSalt,
		Version:   cfg.ContractVersion,
	}

	derivation, err := adapter.DeriveVaultAddress(derivationCfg)
	if err != nil {
		return CreateVaultResult{}, mapChainErr(err)
	}

	deployment, err := adapter.BuildDeployment(derivationCfg)
	if err != nil {
		return CreateVaultResult{}, mapChainErr(err)
	}

	vault := repository.Vault{
		ID:              uuid.NewString(),
		OwnerAddress:    normalizeAddress(cfg.ChainFamily, cfg.OwnerAddress),
		Name:            cfg.Name,
		Description:     cfg.Description,
		ChainFamily:     string(cfg.ChainFamily),
		ChainID:         cfg.ChainID,
		VaultAddress:    derivation.Address,
		CreateKey:       cfg.CreateKey,
		DeploymentSalt:  cfg.DeploymentSalt,
		ContractVersion: cfg.ContractVersion,
		OwnerSet:        strings.Join(addresses, ","),
		SetupThreshold:  cfg.Threshold,
		Threshold:       cfg.Threshold,
		TimeLock:        cfg.TimeLock,
		Status:          VaultStatusPending,
	}

	signers := make([]repository.Signer, len(cfg.Signers))
	for i, s := range cfg.Signers {
		role := s.Role
		if role == "" {
			role = RoleSigner
			if addresses[i] == vault.OwnerAddress {
				role = RoleOwner
			}
		}
		signers[i] = repository.Signer{
			ID:          uuid.NewString(),
			VaultID:     vault.ID,
			Address:     addresses[i],
			Nickname:    s.Nickname,
			Role:        role,
			CanInitiate: s.CanInitiate,
			CanVote:     s.CanVote,
			CanExecute:  s.CanExecute,
			Status:      SignerStatusActive,
		}
	}

	if err := c.repo.CreateVaultWithSigners(ctx, &vault, signers); err != nil {
		return CreateVaultResult{}, err
	}

	c.logs.Infow("vault created",
		"vault_id", vault.ID,
		"chain_family", vault.ChainFamily,
		"chain_id", vault.ChainID,
		"vault_address", vault.VaultAddress,
		"threshold", vault.Threshold,
		"signers", len(signers))

	c.logActivity(ctx, vault.ID, "vault_created", vault.OwnerAddress, "", map[string]any{
		"vault_address": vault.VaultAddress,
		"chain_family":  vault.ChainFamily,
		"chain_id":      vault.ChainID,
		"threshold":     vault.Threshold,
		"signer_count":  len(signers),
	})

	signerRecords := make([]SignerRecord, len(signers))
	for i, s := range signers {
		signerRecords[i] = signerToRecord(s)
	}

	return CreateVaultResult{
		Vault:      vaultToRecord(vault),
		Signers:    signerRecords,
		Deployment: deployment,
	}, nil
}

// PrepareDeployment re-derives the unsigned deployment artifact from the
// creation-time derivation inputs snapshotted on the vault row. Later signer or
// threshold edits do not change the result, so it always matches what
// CreateVault produced and deployment can be retried without re-submitting
// configuration.
func (c *Covault) PrepareDeployment(ctx context.Context, vaultID, deployerAddress string) (chain.Deployment, error) {
	vault, err := c.getVault(ctx, vaultID)
	if err != nil {
		return chain.Deployment{}, err
	}

	adapter, err := c.chains.ForFamily(chain.Family(vault.ChainFamily))
	if err != nil {
		return chain.Deployment{}, fmt.Errorf("%w: chain family %q", ErrUnsupportedChain, vault.ChainFamily)
	}

	deployment, err := adapter.BuildDeployment(chain.DerivationConfig{
		ChainID:   vault.ChainID,
		CreateKey: vault.CreateKey,
		Owners:    strings.Split(vault.OwnerSet, ","),
		Threshold: vault.SetupThreshold,
		Salt:      vault.DeploymentSalt,
		Version:   vault.ContractVersion,
	})
	if err != nil {
		return chain.Deployment{}, mapChainErr(err)
	}

	if deployment.Address != vault.VaultAddress {
		return chain.Deployment{}, fmt.Errorf("%w: derived address %s does not match recorded vault address %s",
			ErrInvalidState, deployment.Address, vault.VaultAddress)
	}

	c.logs.Infow("deployment prepared", "vault_id", vaultID, "deployer", deployerAddress)
	return deployment, nil
}

// ActivateVault records the external deployment transaction and moves the
// vault to active. Activating an already-active vault is a no-op.
func (c *Covault) ActivateVault(ctx context.Context, vaultID, txHash string) (VaultRecord, error) {
	vault, err := c.getVault(ctx, vaultID)
	if err != nil {
		return VaultRecord{}, err
	}

	if vault.Status == VaultStatusActive {
		return vaultToRecord(vault), nil
	}

	vault.Status = VaultStatusActive
	vault.DeployTxHash = txHash
	if err := c.repo.SaveVault(ctx, &vault); err != nil {
		return VaultRecord{}, err
	}

	c.logs.Infow("vault activated", "vault_id", vault.ID, "tx_hash", txHash)
	c.logActivity(ctx, vault.ID, "vault_activated", vault.OwnerAddress, txHash, map[string]any{
		"vault_address": vault.VaultAddress,
	})

	return vaultToRecord(vault), nil
}
