package core_test

import (
	"context"
	"strings"

	"covault/internal/chain"
	"covault/internal/core"
	"covault/internal/repository"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

const (
	ownerAddress   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	secondAddress  = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	thirdAddress   = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
	outsideAddress = "0x90F79bf6EB2c4f870365E785982E1f101E93b906"

	solanaCreateKey = "So11111111111111111111111111111111111111112"
	solanaOwner     = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

var _ = Describe("Covault", func() {
	var (
		covault *core.Covault
		repo    *repository.VaultRepository
		ctx     context.Context

		cfg core.CreateVaultConfig
	)

	signerCfg := func(address string) core.SignerConfig {
		return core.SignerConfig{
			Address:     address,
			CanInitiate: true,
			CanVote:     true,
			CanExecute:  true,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = repository.NewVaultRepository(newTestDB())
		Expect(repo.MigrateTables()).To(Succeed())

		solanaAdapter, err := chain.NewSolanaAdapter("SMPLecH534NA9acpos4G6x7uf3LWbCAwZQE9e8ZekMu")
		Expect(err).NotTo(HaveOccurred())
		evmAdapter, err := chain.NewEVMAdapter("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2")
		Expect(err).NotTo(HaveOccurred())

		covault = core.NewCovault(
			zap.NewNop().Sugar(),
			repo,
			chain.NewRegistry(solanaAdapter, evmAdapter))

		cfg = core.CreateVaultConfig{
			OwnerAddress:   ownerAddress,
			Name:           "ops treasury",
			ChainFamily:    chain.FamilyEVM,
			ChainID:        "1",
			DeploymentSalt: "0x" + strings.Repeat("ab", 32),
			Threshold:      2,
			Signers: []core.SignerConfig{
				signerCfg(ownerAddress),
				signerCfg(secondAddress),
				signerCfg(thirdAddress),
			},
		}
	})

	// activeVault creates and activates a vault from cfg.
	activeVault := func() core.CreateVaultResult {
		result, err := covault.CreateVault(ctx, cfg)
		Expect(err).NotTo(HaveOccurred())
		_, err = covault.ActivateVault(ctx, result.Vault.ID, "0xdeploy")
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	transferProposal := func(vaultID, createdBy string) core.ProposalRecord {
		proposal, err := covault.CreateProposal(ctx, core.CreateProposalConfig{
			VaultID:   vaultID,
			Title:     "pay the auditor",
			TxType:    "transfer",
			CreatedBy: createdBy,
			ToAddress: outsideAddress,
			Amount:    "1000000000000000000",
		})
		Expect(err).NotTo(HaveOccurred())
		return proposal
	}

	Describe("CreateVault", func() {
		When("the configuration is valid", func() {
			It("should persist a pending vault with a derived address", func() {
				result, err := covault.CreateVault(ctx, cfg)

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Vault.Status).To(Equal("pending"))
				Expect(result.Vault.VaultAddress).To(HavePrefix("0x"))
				Expect(result.Vault.Threshold).To(Equal(2))
				Expect(result.Signers).To(HaveLen(3))
				Expect(result.Deployment.Address).To(Equal(result.Vault.VaultAddress))
			})

			It("should derive the same address for the same configuration", func() {
				first, err := covault.CreateVault(ctx, cfg)
				Expect(err).NotTo(HaveOccurred())

				otherRepo := repository.NewVaultRepository(newTestDB())
				Expect(otherRepo.MigrateTables()).To(Succeed())
				solanaAdapter, err := chain.NewSolanaAdapter("SMPLecH534NA9acpos4G6x7uf3LWbCAwZQE9e8ZekMu")
				Expect(err).NotTo(HaveOccurred())
				evmAdapter, err := chain.NewEVMAdapter("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2")
				Expect(err).NotTo(HaveOccurred())
				other := core.NewCovault(zap.NewNop().Sugar(), otherRepo, chain.NewRegistry(solanaAdapter, evmAdapter))

				second, err := other.CreateVault(ctx, cfg)

				Expect(err).NotTo(HaveOccurred())
				Expect(second.Vault.VaultAddress).To(Equal(first.Vault.VaultAddress))
			})

			It("should default the owner role from the owner address", func() {
				result, err := covault.CreateVault(ctx, cfg)

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Signers[0].Role).To(Equal("owner"))
				Expect(result.Signers[1].Role).To(Equal("signer"))
			})

			It("should record a vault_created activity entry", func() {
				result, err := covault.CreateVault(ctx, cfg)
				Expect(err).NotTo(HaveOccurred())

				activity, err := covault.GetActivity(ctx, result.Vault.ID, 0)

				Expect(err).NotTo(HaveOccurred())
				Expect(activity).To(HaveLen(1))
				Expect(activity[0].EventType).To(Equal("vault_created"))
			})
		})

		When("the chain family is solana", func() {
			BeforeEach(func() {
				cfg.OwnerAddress = solanaOwner
				cfg.ChainFamily = chain.FamilySolana
				cfg.ChainID = "devnet"
				cfg.CreateKey = solanaCreateKey
				cfg.DeploymentSalt = ""
				cfg.Threshold = 1
				cfg.Signers = []core.SignerConfig{signerCfg(solanaOwner)}
			})

			It("should derive the multisig pda", func() {
				result, err := covault.CreateVault(ctx, cfg)

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Vault.VaultAddress).NotTo(BeEmpty())
				Expect(result.Vault.VaultAddress).NotTo(HavePrefix("0x"))
			})
		})

		When("no signers are given", func() {
			It("should return an invalid configuration error", func() {
				cfg.Signers = nil

				_, err := covault.CreateVault(ctx, cfg)

				Expect(err).To(MatchError(core.ErrInvalidConfiguration))
			})
		})

		When("the threshold exceeds the signer count", func() {
			It("should return an invalid configuration error", func() {
				cfg.Threshold = 5

				_, err := covault.CreateVault(ctx, cfg)

				Expect(err).To(MatchError(core.ErrInvalidConfiguration))
			})
		})

		When("two signers share an address in different casing", func() {
			It("should return an invalid configuration error", func() {
				cfg.Signers[2].Address = strings.ToUpper(secondAddress[2:])
				cfg.Signers[2].Address = "0x" + cfg.Signers[2].Address

				_, err := covault.CreateVault(ctx, cfg)

				Expect(err).To(MatchError(core.ErrInvalidConfiguration))
			})
		})

		When("the chain family is unknown", func() {
			It("should return an unsupported chain error", func() {
				cfg.ChainFamily = "bitcoin"

				_, err := covault.CreateVault(ctx, cfg)

				Expect(err).To(MatchError(core.ErrUnsupportedChain))
			})
		})

		When("the chain id is not supported by the family", func() {
			It("should return an unsupported chain error and persist nothing", func() {
				cfg.ChainID = "31337"

				_, err := covault.CreateVault(ctx, cfg)

				Expect(err).To(MatchError(core.ErrUnsupportedChain))

				vaults, err := covault.GetVaultsBySigner(ctx, ownerAddress)
				Expect(err).NotTo(HaveOccurred())
				Expect(vaults).To(BeEmpty())
			})
		})
	})

	Describe("ActivateVault", func() {
		It("should move the vault to active with the deploy tx hash", func() {
			result, err := covault.CreateVault(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			vault, err := covault.ActivateVault(ctx, result.Vault.ID, "0xdeploy")

			Expect(err).NotTo(HaveOccurred())
			Expect(vault.Status).To(Equal("active"))
			Expect(vault.DeployTxHash).To(Equal("0xdeploy"))
		})

		It("should keep the original tx hash on repeated activation", func() {
			result := activeVault()

			vault, err := covault.ActivateVault(ctx, result.Vault.ID, "0xother")

			Expect(err).NotTo(HaveOccurred())
			Expect(vault.Status).To(Equal("active"))
			Expect(vault.DeployTxHash).To(Equal("0xdeploy"))
		})

		When("the vault does not exist", func() {
			It("should return not found", func() {
				_, err := covault.ActivateVault(ctx, "missing", "0xdeploy")

				Expect(err).To(MatchError(core.ErrNotFound))
			})
		})
	})

	Describe("PrepareDeployment", func() {
		It("should reproduce the artifact CreateVault returned", func() {
			result, err := covault.CreateVault(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			deployment, err := covault.PrepareDeployment(ctx, result.Vault.ID, ownerAddress)

			Expect(err).NotTo(HaveOccurred())
			Expect(deployment).To(Equal(result.Deployment))
		})

		It("should keep the artifact stable after registry edits on a pending vault", func() {
			result, err := covault.CreateVault(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = covault.AddSigner(ctx, result.Vault.ID, signerCfg(outsideAddress), ownerAddress)
			Expect(err).NotTo(HaveOccurred())
			_, err = covault.UpdateThreshold(ctx, result.Vault.ID, 3, ownerAddress)
			Expect(err).NotTo(HaveOccurred())

			deployment, err := covault.PrepareDeployment(ctx, result.Vault.ID, ownerAddress)

			Expect(err).NotTo(HaveOccurred())
			Expect(deployment).To(Equal(result.Deployment))
			Expect(deployment.Address).To(Equal(result.Vault.VaultAddress))
		})
	})

	Describe("GetVaultsBySigner", func() {
		It("should find evm vaults regardless of address casing", func() {
			result := activeVault()

			vaults, err := covault.GetVaultsBySigner(ctx, "0x"+strings.ToUpper(secondAddress[2:]))

			Expect(err).NotTo(HaveOccurred())
			Expect(vaults).To(HaveLen(1))
			Expect(vaults[0].ID).To(Equal(result.Vault.ID))
		})

		It("should not list vaults for outsiders", func() {
			activeVault()

			vaults, err := covault.GetVaultsBySigner(ctx, outsideAddress)

			Expect(err).NotTo(HaveOccurred())
			Expect(vaults).To(BeEmpty())
		})
	})

	Describe("AddSigner", func() {
		var vaultID string

		BeforeEach(func() {
			vaultID = activeVault().Vault.ID
		})

		It("should add a new active signer", func() {
			signer, err := covault.AddSigner(ctx, vaultID, signerCfg(outsideAddress), ownerAddress)

			Expect(err).NotTo(HaveOccurred())
			Expect(signer.Status).To(Equal("active"))
			Expect(signer.Role).To(Equal("signer"))

			signers, err := covault.GetSigners(ctx, vaultID)
			Expect(err).NotTo(HaveOccurred())
			Expect(signers).To(HaveLen(4))
		})

		It("should reject an already active signer", func() {
			_, err := covault.AddSigner(ctx, vaultID, signerCfg(secondAddress), ownerAddress)

			Expect(err).To(MatchError(core.ErrInvalidConfiguration))
		})

		It("should reactivate a removed signer instead of duplicating the slot", func() {
			Expect(covault.RemoveSigner(ctx, vaultID, thirdAddress, ownerAddress)).To(Succeed())

			signer, err := covault.AddSigner(ctx, vaultID, signerCfg(thirdAddress), ownerAddress)

			Expect(err).NotTo(HaveOccurred())
			Expect(signer.Status).To(Equal("active"))

			signers, err := covault.GetSigners(ctx, vaultID)
			Expect(err).NotTo(HaveOccurred())
			Expect(signers).To(HaveLen(3))
		})
	})

	Describe("RemoveSigner", func() {
		var vaultID string

		BeforeEach(func() {
			vaultID = activeVault().Vault.ID
		})

		It("should soft delete the signer", func() {
			err := covault.RemoveSigner(ctx, vaultID, thirdAddress, ownerAddress)

			Expect(err).NotTo(HaveOccurred())

			signers, err := covault.GetSigners(ctx, vaultID)
			Expect(err).NotTo(HaveOccurred())
			Expect(signers).To(HaveLen(3))

			removed := 0
			for _, s := range signers {
				if s.Status == "removed" {
					removed++
				}
			}
			Expect(removed).To(Equal(1))
		})

		When("removal would drop active signers below the threshold", func() {
			It("should return an invalid configuration error", func() {
				Expect(covault.RemoveSigner(ctx, vaultID, thirdAddress, ownerAddress)).To(Succeed())

				err := covault.RemoveSigner(ctx, vaultID, secondAddress, ownerAddress)

				Expect(err).To(MatchError(core.ErrInvalidConfiguration))
			})
		})

		When("the signer does not exist", func() {
			It("should return not found", func() {
				err := covault.RemoveSigner(ctx, vaultID, outsideAddress, ownerAddress)

				Expect(err).To(MatchError(core.ErrNotFound))
			})
		})
	})

	Describe("UpdateThreshold", func() {
		var vaultID string

		BeforeEach(func() {
			vaultID = activeVault().Vault.ID
		})

		It("should change the threshold within bounds", func() {
			vault, err := covault.UpdateThreshold(ctx, vaultID, 3, ownerAddress)

			Expect(err).NotTo(HaveOccurred())
			Expect(vault.Threshold).To(Equal(3))
		})

		It("should reject a threshold above the active signer count and keep the old value", func() {
			_, err := covault.UpdateThreshold(ctx, vaultID, 5, ownerAddress)

			Expect(err).To(MatchError(core.ErrInvalidConfiguration))

			vault, err := covault.GetVault(ctx, vaultID)
			Expect(err).NotTo(HaveOccurred())
			Expect(vault.Threshold).To(Equal(2))
		})

		It("should not touch the snapshot of existing proposals", func() {
			proposal := transferProposal(vaultID, ownerAddress)

			_, err := covault.UpdateThreshold(ctx, vaultID, 3, ownerAddress)
			Expect(err).NotTo(HaveOccurred())

			stored, err := covault.GetProposal(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ApprovalsRequired).To(Equal(2))
		})
	})

	Describe("CreateProposal", func() {
		When("the vault is active", func() {
			var vaultID string

			BeforeEach(func() {
				vaultID = activeVault().Vault.ID
			})

			It("should persist a pending proposal with a snapshot threshold", func() {
				proposal := transferProposal(vaultID, ownerAddress)

				Expect(proposal.Status).To(Equal("pending"))
				Expect(proposal.ProposalIndex).To(Equal(int64(1)))
				Expect(proposal.ApprovalsRequired).To(Equal(2))
				Expect(proposal.ApprovalsReceived).To(Equal(0))
			})

			It("should compute the canonical hash for evm proposals", func() {
				proposal := transferProposal(vaultID, ownerAddress)

				Expect(proposal.TxHash).To(HavePrefix("0x"))
				Expect(proposal.TxHash).To(HaveLen(66))
			})

			It("should number proposals monotonically per vault", func() {
				first := transferProposal(vaultID, ownerAddress)
				second := transferProposal(vaultID, secondAddress)

				Expect(first.ProposalIndex).To(Equal(int64(1)))
				Expect(second.ProposalIndex).To(Equal(int64(2)))
			})

			When("the creator is not a signer", func() {
				It("should return an unauthorized error", func() {
					_, err := covault.CreateProposal(ctx, core.CreateProposalConfig{
						VaultID:   vaultID,
						Title:     "sneaky",
						TxType:    "transfer",
						CreatedBy: outsideAddress,
						ToAddress: outsideAddress,
						Amount:    "1",
					})

					Expect(err).To(MatchError(core.ErrUnauthorized))
				})
			})

			When("the next index is already taken", func() {
				It("should give up after retrying and return an invalid state error", func() {
					// Occupy index 2 without an index 1, so every recount
					// lands on the same taken index.
					Expect(repo.CreateProposal(ctx, &repository.Proposal{
						ID:                uuid.NewString(),
						VaultID:           vaultID,
						ProposalIndex:     2,
						Title:             "squatter",
						TxType:            "transfer",
						ToAddress:         outsideAddress,
						Amount:            "1",
						ApprovalsRequired: 2,
						Status:            "pending",
						CreatedBy:         strings.ToLower(ownerAddress),
					})).To(Succeed())

					_, err := covault.CreateProposal(ctx, core.CreateProposalConfig{
						VaultID:   vaultID,
						Title:     "collides",
						TxType:    "transfer",
						CreatedBy: ownerAddress,
						ToAddress: outsideAddress,
						Amount:    "1",
					})

					Expect(err).To(MatchError(core.ErrInvalidState))
				})
			})

			When("the action parameters are invalid", func() {
				It("should return an invalid proposal error and persist nothing", func() {
					_, err := covault.CreateProposal(ctx, core.CreateProposalConfig{
						VaultID:   vaultID,
						Title:     "broken",
						TxType:    "transfer",
						CreatedBy: ownerAddress,
						ToAddress: "not-an-address",
						Amount:    "1",
					})

					Expect(err).To(MatchError(core.ErrInvalidProposal))

					proposals, listErr := covault.GetProposals(ctx, vaultID)
					Expect(listErr).NotTo(HaveOccurred())
					Expect(proposals).To(BeEmpty())
				})
			})
		})

		When("the vault is still pending", func() {
			It("should return a vault not active error", func() {
				result, err := covault.CreateVault(ctx, cfg)
				Expect(err).NotTo(HaveOccurred())

				_, err = covault.CreateProposal(ctx, core.CreateProposalConfig{
					VaultID:   result.Vault.ID,
					Title:     "too early",
					TxType:    "transfer",
					CreatedBy: ownerAddress,
					ToAddress: outsideAddress,
					Amount:    "1",
				})

				Expect(err).To(MatchError(core.ErrVaultNotActive))
			})
		})
	})

	Describe("VoteOnProposal", func() {
		var (
			vaultID  string
			proposal core.ProposalRecord
		)

		BeforeEach(func() {
			vaultID = activeVault().Vault.ID
			proposal = transferProposal(vaultID, ownerAddress)
		})

		It("should reject an unknown vote value", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "abstain", "")

			Expect(err).To(MatchError(core.ErrInvalidState))
		})

		It("should stay pending below the threshold", func() {
			result, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "approve", "sig-owner")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ApprovalsReceived).To(Equal(1))
			Expect(result.Status).To(Equal("pending"))
			Expect(result.CanExecute).To(BeFalse())
		})

		It("should transition to approved when approvals reach the threshold", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "approve", "sig-owner")
			Expect(err).NotTo(HaveOccurred())

			result, err := covault.VoteOnProposal(ctx, proposal.ID, secondAddress, "approve", "sig-second")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ApprovalsReceived).To(Equal(2))
			Expect(result.Status).To(Equal("approved"))
			Expect(result.CanExecute).To(BeTrue())
		})

		It("should transition to rejected when approval is mathematically out of reach", func() {
			// 3 active signers, threshold 2: two rejections leave at most one approval
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "reject", "")
			Expect(err).NotTo(HaveOccurred())

			result, err := covault.VoteOnProposal(ctx, proposal.ID, secondAddress, "reject", "")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.RejectionsReceived).To(Equal(2))
			Expect(result.Status).To(Equal("rejected"))
		})

		It("should reject a second vote by the same signer and keep the tallies", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "approve", "sig-owner")
			Expect(err).NotTo(HaveOccurred())

			_, err = covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "reject", "")

			Expect(err).To(MatchError(core.ErrDuplicateVote))

			stored, err := covault.GetProposal(ctx, proposal.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ApprovalsReceived).To(Equal(1))
			Expect(stored.RejectionsReceived).To(Equal(0))
			Expect(stored.Status).To(Equal("pending"))
		})

		It("should treat evm addresses case-insensitively for duplicate detection", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "approve", "sig-owner")
			Expect(err).NotTo(HaveOccurred())

			_, err = covault.VoteOnProposal(ctx, proposal.ID, strings.ToLower(ownerAddress), "approve", "sig-owner")

			Expect(err).To(MatchError(core.ErrDuplicateVote))
		})

		It("should reject votes on a settled proposal", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "approve", "sig-owner")
			Expect(err).NotTo(HaveOccurred())
			_, err = covault.VoteOnProposal(ctx, proposal.ID, secondAddress, "approve", "sig-second")
			Expect(err).NotTo(HaveOccurred())

			_, err = covault.VoteOnProposal(ctx, proposal.ID, thirdAddress, "approve", "sig-third")

			Expect(err).To(MatchError(core.ErrInvalidState))
		})

		It("should reject votes from removed signers", func() {
			Expect(covault.RemoveSigner(ctx, vaultID, thirdAddress, ownerAddress)).To(Succeed())

			_, err := covault.VoteOnProposal(ctx, proposal.ID, thirdAddress, "approve", "sig-third")

			Expect(err).To(MatchError(core.ErrUnauthorized))
		})

		It("should reject votes from outsiders", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, outsideAddress, "approve", "")

			Expect(err).To(MatchError(core.ErrUnauthorized))
		})
	})

	Describe("PrepareExecution", func() {
		var (
			vaultID  string
			proposal core.ProposalRecord
		)

		BeforeEach(func() {
			vaultID = activeVault().Vault.ID
			proposal = transferProposal(vaultID, ownerAddress)
		})

		approve := func(signer, signature string) {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, signer, "approve", signature)
			Expect(err).NotTo(HaveOccurred())
		}

		When("enough signatures are collected", func() {
			BeforeEach(func() {
				approve(ownerAddress, "sig-owner")
				approve(secondAddress, "sig-second")
			})

			It("should assemble the package with the canonical transaction", func() {
				pkg, err := covault.PrepareExecution(ctx, proposal.ID, ownerAddress)

				Expect(err).NotTo(HaveOccurred())
				Expect(pkg.ProposalID).To(Equal(proposal.ID))
				Expect(pkg.Threshold).To(Equal(2))
				Expect(pkg.Signatures).To(HaveLen(2))
				Expect(pkg.Transaction.Hash).To(Equal(proposal.TxHash))
				Expect(pkg.Transaction.Nonce).To(Equal(uint64(0)))
			})

			It("should be retryable without side effects", func() {
				first, err := covault.PrepareExecution(ctx, proposal.ID, ownerAddress)
				Expect(err).NotTo(HaveOccurred())

				second, err := covault.PrepareExecution(ctx, proposal.ID, ownerAddress)

				Expect(err).NotTo(HaveOccurred())
				Expect(second).To(Equal(first))
			})
		})

		When("an approval was cast without a signature", func() {
			BeforeEach(func() {
				approve(ownerAddress, "sig-owner")
				approve(secondAddress, "")
			})

			It("should report how many signatures were collected", func() {
				_, err := covault.PrepareExecution(ctx, proposal.ID, ownerAddress)

				Expect(err).To(MatchError(core.ErrInsufficientSignatures))
				Expect(err.Error()).To(ContainSubstring("1/2 collected"))
			})
		})

		When("an approver was removed after voting", func() {
			BeforeEach(func() {
				approve(ownerAddress, "sig-owner")
				approve(secondAddress, "sig-second")
				Expect(covault.RemoveSigner(ctx, vaultID, secondAddress, ownerAddress)).To(Succeed())
			})

			It("should not count the removed signer's signature", func() {
				_, err := covault.PrepareExecution(ctx, proposal.ID, ownerAddress)

				Expect(err).To(MatchError(core.ErrInsufficientSignatures))
				Expect(err.Error()).To(ContainSubstring("1/2 collected"))
			})
		})

		When("the proposal is not approved", func() {
			It("should return an invalid state error", func() {
				_, err := covault.PrepareExecution(ctx, proposal.ID, ownerAddress)

				Expect(err).To(MatchError(core.ErrInvalidState))
			})
		})

		When("the executor is not a signer", func() {
			BeforeEach(func() {
				approve(ownerAddress, "sig-owner")
				approve(secondAddress, "sig-second")
			})

			It("should return an unauthorized error", func() {
				_, err := covault.PrepareExecution(ctx, proposal.ID, outsideAddress)

				Expect(err).To(MatchError(core.ErrUnauthorized))
			})
		})
	})

	Describe("MarkExecuted", func() {
		var (
			vaultID  string
			proposal core.ProposalRecord
		)

		BeforeEach(func() {
			vaultID = activeVault().Vault.ID
			proposal = transferProposal(vaultID, ownerAddress)
		})

		approveToThreshold := func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, ownerAddress, "approve", "sig-owner")
			Expect(err).NotTo(HaveOccurred())
			_, err = covault.VoteOnProposal(ctx, proposal.ID, secondAddress, "approve", "sig-second")
			Expect(err).NotTo(HaveOccurred())
		}

		It("should record the execution on an approved proposal", func() {
			approveToThreshold()

			executed, err := covault.MarkExecuted(ctx, proposal.ID, ownerAddress, "0xexec")

			Expect(err).NotTo(HaveOccurred())
			Expect(executed.Status).To(Equal("executed"))
			Expect(executed.ExecutedBy).To(Equal(strings.ToLower(ownerAddress)))
			Expect(executed.ExecutedTxHash).To(Equal("0xexec"))
		})

		It("should reject a second execution", func() {
			approveToThreshold()
			_, err := covault.MarkExecuted(ctx, proposal.ID, ownerAddress, "0xexec")
			Expect(err).NotTo(HaveOccurred())

			_, err = covault.MarkExecuted(ctx, proposal.ID, secondAddress, "0xother")

			Expect(err).To(MatchError(core.ErrInvalidState))

			stored, readErr := covault.GetProposal(ctx, proposal.ID)
			Expect(readErr).NotTo(HaveOccurred())
			Expect(stored.ExecutedTxHash).To(Equal("0xexec"))
		})

		It("should reject execution of a pending proposal", func() {
			_, err := covault.MarkExecuted(ctx, proposal.ID, ownerAddress, "0xexec")

			Expect(err).To(MatchError(core.ErrInvalidState))
		})
	})

	Describe("solana governance", func() {
		var (
			vaultID  string
			proposal core.ProposalRecord
		)

		BeforeEach(func() {
			cfg.OwnerAddress = solanaOwner
			cfg.ChainFamily = chain.FamilySolana
			cfg.ChainID = "devnet"
			cfg.CreateKey = solanaCreateKey
			cfg.DeploymentSalt = ""
			cfg.Threshold = 1
			cfg.Signers = []core.SignerConfig{signerCfg(solanaOwner)}

			vaultID = activeVault().Vault.ID

			var err error
			proposal, err = covault.CreateProposal(ctx, core.CreateProposalConfig{
				VaultID:      vaultID,
				Title:        "rotate authority",
				TxType:       "change_threshold",
				CreatedBy:    solanaOwner,
				NewThreshold: 1,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should identify proposals by index instead of hash", func() {
			Expect(proposal.TxHash).To(BeEmpty())
			Expect(proposal.ProposalIndex).To(Equal(int64(1)))
		})

		It("should carry the index identity into the execution package", func() {
			_, err := covault.VoteOnProposal(ctx, proposal.ID, solanaOwner, "approve", "sig-owner")
			Expect(err).NotTo(HaveOccurred())

			pkg, err := covault.PrepareExecution(ctx, proposal.ID, solanaOwner)

			Expect(err).NotTo(HaveOccurred())
			Expect(pkg.Transaction.MultisigAddress).NotTo(BeEmpty())
			Expect(pkg.Transaction.TransactionIndex).To(Equal(int64(1)))
			Expect(pkg.Transaction.Hash).To(BeEmpty())
		})
	})
})
