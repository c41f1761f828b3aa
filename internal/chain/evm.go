package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Chain ids the deployed vault contracts exist on.
var supportedEVMChains = map[string]string{
	"1":        "ethereum",
	"10":       "optimism",
	"56":       "bsc",
	"137":      "polygon",
	"8453":     "base",
	"42161":    "arbitrum",
	"11155111": "sepolia",
}

// Init code hash of the vault proxy per contract version. The predicted
// address depends on it, so entries are append-only.
var proxyInitCodeHash = map[string]common.Hash{
	"1.0.0": common.HexToHash("0x76733d705f71b79841c0ee960a0ca47daa9e34a2e2f131ea91c0f3aac43d9f6b"),
}

const DefaultContractVersion = "1.0.0"

var (
	domainTypeHash  = crypto.Keccak256Hash([]byte("EIP712Domain(uint256 chainId,address verifyingContract)"))
	vaultTxTypeHash = crypto.Keccak256Hash([]byte("VaultTransaction(address to,uint256 value,bytes32 dataHash,uint256 nonce)"))
)

// EVMAdapter predicts vault deployment addresses with the CREATE2 formula and
// computes the EIP-712 digest signers approve off-band.
type EVMAdapter struct {
	factory common.Address
}

func NewEVMAdapter(factoryAddress string) (*EVMAdapter, error) {
	if !common.IsHexAddress(factoryAddress) {
		return nil, fmt.Errorf("%w: factory address %q", ErrInvalidConfig, factoryAddress)
	}
	return &EVMAdapter{
		factory: common.HexToAddress(factoryAddress),
	}, nil
}

func (a *EVMAdapter) DeriveVaultAddress(cfg DerivationConfig) (Derivation, error) {
	if _, ok := supportedEVMChains[cfg.ChainID]; !ok {
		return Derivation{}, fmt.Errorf("%w: evm chain id %q", ErrUnsupportedChain, cfg.ChainID)
	}

	owners, err := parseOwners(cfg.Owners)
	if err != nil {
		return Derivation{}, err
	}
	if cfg.Threshold < 1 || cfg.Threshold > len(owners) {
		return Derivation{}, fmt.Errorf("%w: threshold %d out of bounds for %d owners", ErrInvalidConfig, cfg.Threshold, len(owners))
	}

	saltNonce, err := parseSalt(cfg.Salt)
	if err != nil {
		return Derivation{}, err
	}

	version := cfg.Version
	if version == "" {
		version = DefaultContractVersion
	}
	initCodeHash, ok := proxyInitCodeHash[version]
	if !ok {
		return Derivation{}, fmt.Errorf("%w: unknown contract version %q", ErrInvalidConfig, version)
	}

	initializer := packSetupCall(owners, cfg.Threshold)
	salt := crypto.Keccak256Hash(crypto.Keccak256(initializer), saltNonce[:])
	address := crypto.CreateAddress2(a.factory, salt, initCodeHash.Bytes())

	return Derivation{
		Address: address.Hex(),
		Metadata: map[string]string{
			"factory":        a.factory.Hex(),
			"salt":           salt.Hex(),
			"init_code_hash": initCodeHash.Hex(),
			"version":        version,
		},
	}, nil
}

func (a *EVMAdapter) BuildDeployment(cfg DerivationConfig) (Deployment, error) {
	derivation, err := a.DeriveVaultAddress(cfg)
	if err != nil {
		return Deployment{}, err
	}

	owners, _ := parseOwners(cfg.Owners)
	saltNonce, _ := parseSalt(cfg.Salt)

	data := selector("deployVault(bytes32,bytes)")
	data = append(data, saltNonce[:]...)
	data = append(data, packSetupCall(owners, cfg.Threshold)...)

	return Deployment{
		To:          a.factory.Hex(),
		Data:        "0x" + hex.EncodeToString(data),
		Address:     derivation.Address,
		Description: fmt.Sprintf("deploy vault proxy at %s via factory %s", derivation.Address, a.factory.Hex()),
	}, nil
}

func (a *EVMAdapter) BuildTransaction(spec TxSpec) (UnsignedTx, error) {
	if _, ok := supportedEVMChains[spec.ChainID]; !ok {
		return UnsignedTx{}, fmt.Errorf("%w: evm chain id %q", ErrUnsupportedChain, spec.ChainID)
	}
	if !common.IsHexAddress(spec.VaultAddress) {
		return UnsignedTx{}, fmt.Errorf("%w: vault address %q", ErrInvalidTransaction, spec.VaultAddress)
	}
	vault := common.HexToAddress(spec.VaultAddress)

	to, value, data, err := a.actionCall(vault, spec)
	if err != nil {
		return UnsignedTx{}, err
	}

	var nonce uint64
	if spec.ProposalIndex > 0 {
		nonce = uint64(spec.ProposalIndex - 1)
	}

	hash := txDigest(spec.ChainID, vault, to, value, data, nonce)

	return UnsignedTx{
		ChainID:           spec.ChainID,
		To:                to.Hex(),
		Value:             value.String(),
		Data:              "0x" + hex.EncodeToString(data),
		Nonce:             nonce,
		VerifyingContract: vault.Hex(),
		Hash:              hash.Hex(),
	}, nil
}

// actionCall maps a proposal action to the (to, value, calldata) tuple the
// vault contract will execute.
func (a *EVMAdapter) actionCall(vault common.Address, spec TxSpec) (common.Address, *big.Int, []byte, error) {
	zero := new(big.Int)

	switch spec.TxType {
	case TxTypeTransfer:
		to, err := parseAddress(spec.ToAddress)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		value, err := parseAmount(spec.Amount)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		return to, value, nil, nil

	case TxTypeTokenTransfer:
		token, err := parseAddress(spec.TokenAddress)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		recipient, err := parseAddress(spec.ToAddress)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		amount, err := parseAmount(spec.Amount)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		data := selector("transfer(address,uint256)")
		data = append(data, common.LeftPadBytes(recipient.Bytes(), 32)...)
		data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
		return token, zero, data, nil

	case TxTypeAddSigner:
		signer, err := parseAddress(spec.SignerToAdd)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		data := selector("addSigner(address)")
		data = append(data, common.LeftPadBytes(signer.Bytes(), 32)...)
		return vault, zero, data, nil

	case TxTypeRemoveSigner:
		signer, err := parseAddress(spec.SignerToRemove)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		data := selector("removeSigner(address)")
		data = append(data, common.LeftPadBytes(signer.Bytes(), 32)...)
		return vault, zero, data, nil

	case TxTypeChangeThreshold:
		if spec.NewThreshold < 1 {
			return common.Address{}, nil, nil, fmt.Errorf("%w: new threshold %d", ErrInvalidTransaction, spec.NewThreshold)
		}
		data := selector("changeThreshold(uint256)")
		data = append(data, common.LeftPadBytes(big.NewInt(int64(spec.NewThreshold)).Bytes(), 32)...)
		return vault, zero, data, nil

	case TxTypeConfigChange:
		payload, err := parseHexPayload(spec.RawPayload)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		data := selector("updateConfig(bytes)")
		data = append(data, payload...)
		return vault, zero, data, nil

	case TxTypeCustom:
		to, err := parseAddress(spec.ToAddress)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		data, err := parseHexPayload(spec.RawPayload)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		value := zero
		if spec.Amount != "" {
			value, err = parseAmount(spec.Amount)
			if err != nil {
				return common.Address{}, nil, nil, err
			}
		}
		return to, value, data, nil
	}

	return common.Address{}, nil, nil, fmt.Errorf("%w: unknown tx type %q", ErrInvalidTransaction, spec.TxType)
}

// txDigest computes the EIP-712 digest over the canonical tuple. Stable for
// identical (chainId, verifyingContract, to, value, data, nonce) inputs.
func txDigest(chainID string, vault, to common.Address, value *big.Int, data []byte, nonce uint64) common.Hash {
	chain, _ := new(big.Int).SetString(chainID, 10)

	domainSeparator := crypto.Keccak256(
		domainTypeHash.Bytes(),
		common.LeftPadBytes(chain.Bytes(), 32),
		common.LeftPadBytes(vault.Bytes(), 32),
	)

	structHash := crypto.Keccak256(
		vaultTxTypeHash.Bytes(),
		common.LeftPadBytes(to.Bytes(), 32),
		common.LeftPadBytes(value.Bytes(), 32),
		crypto.Keccak256(data),
		common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32),
	)

	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator, structHash)
}

func packSetupCall(owners []common.Address, threshold int) []byte {
	data := selector("setup(address[],uint256)")
	data = append(data, common.LeftPadBytes(big.NewInt(int64(len(owners))).Bytes(), 32)...)
	for _, owner := range owners {
		data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
	}
	data = append(data, common.LeftPadBytes(big.NewInt(int64(threshold)).Bytes(), 32)...)
	return data
}

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func parseOwners(raw []string) ([]common.Address, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: owner set is empty", ErrInvalidConfig)
	}
	owners := make([]common.Address, 0, len(raw))
	for _, o := range raw {
		if !common.IsHexAddress(o) {
			return nil, fmt.Errorf("%w: owner address %q", ErrInvalidConfig, o)
		}
		owners = append(owners, common.HexToAddress(o))
	}
	return owners, nil
}

func parseSalt(raw string) (common.Hash, error) {
	trimmed := strings.TrimPrefix(raw, "0x")
	if len(trimmed) != 64 {
		return common.Hash{}, fmt.Errorf("%w: deployment salt must be 32 bytes, got %q", ErrInvalidConfig, raw)
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: deployment salt %q: %v", ErrInvalidConfig, raw, err)
	}
	return common.BytesToHash(b), nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: address %q", ErrInvalidTransaction, raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount %q", ErrInvalidTransaction, raw)
	}
	return amount, nil
}

func parseHexPayload(raw string) ([]byte, error) {
	trimmed := strings.TrimPrefix(raw, "0x")
	data, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: raw payload: %v", ErrInvalidTransaction, err)
	}
	return data, nil
}
