package chain

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

var supportedSolanaClusters = map[string]struct{}{
	"mainnet-beta": {},
	"devnet":       {},
	"testnet":      {},
}

// PDA seed scheme of the multisig program. Changing any of these changes
// every derived address.
var (
	seedMultisig  = []byte("multisig")
	seedAuthority = []byte("authority")
)

const defaultAuthorityIndex uint32 = 1

// SolanaAdapter derives multisig addresses as program-derived addresses of a
// caller-supplied one-time create key. Derivation is pure; no RPC involved.
type SolanaAdapter struct {
	programID solana.PublicKey
}

func NewSolanaAdapter(programID string) (*SolanaAdapter, error) {
	pk, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("%w: program id %q: %v", ErrInvalidConfig, programID, err)
	}
	return &SolanaAdapter{
		programID: pk,
	}, nil
}

func (a *SolanaAdapter) DeriveVaultAddress(cfg DerivationConfig) (Derivation, error) {
	if _, ok := supportedSolanaClusters[cfg.ChainID]; !ok {
		return Derivation{}, fmt.Errorf("%w: solana cluster %q", ErrUnsupportedChain, cfg.ChainID)
	}
	if cfg.CreateKey == "" {
		return Derivation{}, fmt.Errorf("%w: create key is required for solana vaults", ErrInvalidConfig)
	}

	createKey, err := solana.PublicKeyFromBase58(cfg.CreateKey)
	if err != nil {
		return Derivation{}, fmt.Errorf("%w: create key %q: %v", ErrInvalidConfig, cfg.CreateKey, err)
	}

	multisig, multisigBump, err := solana.FindProgramAddress(
		[][]byte{seedMultisig, createKey.Bytes()},
		a.programID,
	)
	if err != nil {
		return Derivation{}, fmt.Errorf("%w: multisig pda: %v", ErrInvalidConfig, err)
	}

	authorityIndex := make([]byte, 4)
	binary.LittleEndian.PutUint32(authorityIndex, defaultAuthorityIndex)

	authority, authorityBump, err := solana.FindProgramAddress(
		[][]byte{seedMultisig, multisig.Bytes(), authorityIndex, seedAuthority},
		a.programID,
	)
	if err != nil {
		return Derivation{}, fmt.Errorf("%w: authority pda: %v", ErrInvalidConfig, err)
	}

	return Derivation{
		Address: multisig.String(),
		Metadata: map[string]string{
			"program_id":        a.programID.String(),
			"multisig_bump":     strconv.Itoa(int(multisigBump)),
			"default_authority": authority.String(),
			"authority_bump":    strconv.Itoa(int(authorityBump)),
		},
	}, nil
}

func (a *SolanaAdapter) BuildDeployment(cfg DerivationConfig) (Deployment, error) {
	derivation, err := a.DeriveVaultAddress(cfg)
	if err != nil {
		return Deployment{}, err
	}

	return Deployment{
		To:      a.programID.String(),
		Address: derivation.Address,
		Description: fmt.Sprintf(
			"initialize multisig %s; the create key %s must co-sign the initialization transaction",
			derivation.Address, cfg.CreateKey),
	}, nil
}

// BuildTransaction returns the index-based canonical identity. There is no
// separate content hash on this family; signers approve the pair
// (multisig address, transaction index) recorded on chain.
func (a *SolanaAdapter) BuildTransaction(spec TxSpec) (UnsignedTx, error) {
	if _, ok := supportedSolanaClusters[spec.ChainID]; !ok {
		return UnsignedTx{}, fmt.Errorf("%w: solana cluster %q", ErrUnsupportedChain, spec.ChainID)
	}
	if _, err := solana.PublicKeyFromBase58(spec.VaultAddress); err != nil {
		return UnsignedTx{}, fmt.Errorf("%w: vault address %q: %v", ErrInvalidTransaction, spec.VaultAddress, err)
	}

	value := "0"
	switch spec.TxType {
	case TxTypeTransfer, TxTypeTokenTransfer:
		amount, err := parseAmount(spec.Amount)
		if err != nil {
			return UnsignedTx{}, err
		}
		if _, err := solana.PublicKeyFromBase58(spec.ToAddress); err != nil {
			return UnsignedTx{}, fmt.Errorf("%w: recipient %q: %v", ErrInvalidTransaction, spec.ToAddress, err)
		}
		if spec.TxType == TxTypeTokenTransfer {
			if _, err := solana.PublicKeyFromBase58(spec.TokenAddress); err != nil {
				return UnsignedTx{}, fmt.Errorf("%w: token mint %q: %v", ErrInvalidTransaction, spec.TokenAddress, err)
			}
		}
		value = amount.String()
	case TxTypeAddSigner, TxTypeRemoveSigner, TxTypeChangeThreshold, TxTypeConfigChange:
		// config actions carry their parameters in the governance record
	case TxTypeCustom:
		if _, err := parseHexPayload(spec.RawPayload); err != nil {
			return UnsignedTx{}, err
		}
	default:
		return UnsignedTx{}, fmt.Errorf("%w: unknown tx type %q", ErrInvalidTransaction, spec.TxType)
	}

	return UnsignedTx{
		ChainID:          spec.ChainID,
		To:               spec.ToAddress,
		Value:            value,
		Data:             spec.RawPayload,
		MultisigAddress:  spec.VaultAddress,
		TransactionIndex: spec.ProposalIndex,
	}, nil
}
