package chain_test

import (
	"covault/internal/chain"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SolanaAdapter", func() {
	var (
		adapter *chain.SolanaAdapter
		err     error

		programID string
		cfg       chain.DerivationConfig
	)

	BeforeEach(func() {
		programID = "SMPLecH534NA9acpos4G6x7uf3LWbCAwZQE9e8ZekMu"

		adapter, err = chain.NewSolanaAdapter(programID)
		Expect(err).NotTo(HaveOccurred())

		cfg = chain.DerivationConfig{
			ChainID:   "mainnet-beta",
			CreateKey: "So11111111111111111111111111111111111111112",
		}
	})

	Describe("NewSolanaAdapter", func() {
		When("the program id is not a base58 public key", func() {
			It("should return an invalid config error", func() {
				_, err := chain.NewSolanaAdapter("not-base58-0OIl")

				Expect(err).To(MatchError(chain.ErrInvalidConfig))
			})
		})
	})

	Describe("DeriveVaultAddress", func() {
		var derivation chain.Derivation

		JustBeforeEach(func() {
			derivation, err = adapter.DeriveVaultAddress(cfg)
		})

		When("the configuration is valid", func() {
			It("should derive the multisig pda with bump metadata", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(derivation.Address).NotTo(BeEmpty())
				Expect(derivation.Metadata).To(HaveKeyWithValue("program_id", programID))
				Expect(derivation.Metadata).To(HaveKey("multisig_bump"))
				Expect(derivation.Metadata).To(HaveKey("default_authority"))
				Expect(derivation.Metadata).To(HaveKey("authority_bump"))
			})

			It("should be deterministic for the same create key", func() {
				again, againErr := adapter.DeriveVaultAddress(cfg)

				Expect(err).NotTo(HaveOccurred())
				Expect(againErr).NotTo(HaveOccurred())
				Expect(again.Address).To(Equal(derivation.Address))
				Expect(again.Metadata["default_authority"]).To(Equal(derivation.Metadata["default_authority"]))
			})

			It("should derive a different address for a different create key", func() {
				other := cfg
				other.CreateKey = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

				otherDerivation, otherErr := adapter.DeriveVaultAddress(other)

				Expect(otherErr).NotTo(HaveOccurred())
				Expect(otherDerivation.Address).NotTo(Equal(derivation.Address))
			})
		})

		When("the cluster is not supported", func() {
			BeforeEach(func() {
				cfg.ChainID = "localnet"
			})

			It("should return an unsupported chain error", func() {
				Expect(err).To(MatchError(chain.ErrUnsupportedChain))
			})
		})

		When("the create key is missing", func() {
			BeforeEach(func() {
				cfg.CreateKey = ""
			})

			It("should return an invalid config error", func() {
				Expect(err).To(MatchError(chain.ErrInvalidConfig))
			})
		})

		When("the create key is not base58", func() {
			BeforeEach(func() {
				cfg.CreateKey = "0xdeadbeef"
			})

			It("should return an invalid config error", func() {
				Expect(err).To(MatchError(chain.ErrInvalidConfig))
			})
		})
	})

	Describe("BuildDeployment", func() {
		var deployment chain.Deployment

		JustBeforeEach(func() {
			deployment, err = adapter.BuildDeployment(cfg)
		})

		When("the configuration is valid", func() {
			It("should target the program and mention the create key", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(deployment.To).To(Equal(programID))
				Expect(deployment.Address).NotTo(BeEmpty())
				Expect(deployment.Description).To(ContainSubstring(cfg.CreateKey))
			})
		})

		When("the cluster is not supported", func() {
			BeforeEach(func() {
				cfg.ChainID = "localnet"
			})

			It("should return an unsupported chain error", func() {
				Expect(err).To(MatchError(chain.ErrUnsupportedChain))
			})
		})
	})

	Describe("BuildTransaction", func() {
		var (
			spec chain.TxSpec
			tx   chain.UnsignedTx
		)

		BeforeEach(func() {
			spec = chain.TxSpec{
				ChainID:       "devnet",
				VaultAddress:  "So11111111111111111111111111111111111111112",
				TxType:        chain.TxTypeTransfer,
				ToAddress:     "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
				Amount:        "5000000",
				ProposalIndex: 3,
			}
		})

		JustBeforeEach(func() {
			tx, err = adapter.BuildTransaction(spec)
		})

		When("the spec describes a transfer", func() {
			It("should return the index-based identity without a content hash", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(tx.MultisigAddress).To(Equal(spec.VaultAddress))
				Expect(tx.TransactionIndex).To(Equal(int64(3)))
				Expect(tx.Value).To(Equal("5000000"))
				Expect(tx.Hash).To(BeEmpty())
			})
		})

		When("the spec describes a threshold change", func() {
			BeforeEach(func() {
				spec.TxType = chain.TxTypeChangeThreshold
				spec.ToAddress = ""
				spec.Amount = ""
				spec.NewThreshold = 2
			})

			It("should carry no value", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(tx.Value).To(Equal("0"))
				Expect(tx.TransactionIndex).To(Equal(int64(3)))
			})
		})

		When("the recipient is not base58", func() {
			BeforeEach(func() {
				spec.ToAddress = "not-a-key"
			})

			It("should return an invalid transaction error", func() {
				Expect(err).To(MatchError(chain.ErrInvalidTransaction))
			})
		})

		When("the amount is not a decimal number", func() {
			BeforeEach(func() {
				spec.Amount = "lots"
			})

			It("should return an invalid transaction error", func() {
				Expect(err).To(MatchError(chain.ErrInvalidTransaction))
			})
		})

		When("the cluster is not supported", func() {
			BeforeEach(func() {
				spec.ChainID = "localnet"
			})

			It("should return an unsupported chain error", func() {
				Expect(err).To(MatchError(chain.ErrUnsupportedChain))
			})
		})
	})
})
