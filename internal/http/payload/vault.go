package payload

import (
	"covault/internal/chain"
	"covault/internal/core"

	"github.com/jellydator/validation"
)

type SignerPayload struct {
	Address     string `json:"address"`
	Nickname    string `json:"nickname,omitempty"`
	Role        string `json:"role,omitempty"`
	CanInitiate bool   `json:"canInitiate"`
	CanVote     bool   `json:"canVote"`
	CanExecute  bool   `json:"canExecute"`
}

func (s SignerPayload) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, validation.Length(20, 64)),
		validation.Field(&s.Role, validation.In("", "owner", "signer")),
	)
}

func (s SignerPayload) ToCoreConfig() core.SignerConfig {
	return core.SignerConfig{
		Address:     s.Address,
		Nickname:    s.Nickname,
		Role:        s.Role,
		CanInitiate: s.CanInitiate,
		CanVote:     s.CanVote,
		CanExecute:  s.CanExecute,
	}
}

type CreateVaultRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	ChainFamily     string          `json:"chainFamily"`
	ChainID         string          `json:"chainId"`
	CreateKey       string          `json:"createKey,omitempty"`
	DeploymentSalt  string          `json:"deploymentSalt,omitempty"`
	ContractVersion string          `json:"contractVersion,omitempty"`
	Threshold       int             `json:"threshold"`
	TimeLock        int64           `json:"timeLock,omitempty"`
	Signers         []SignerPayload `json:"signers"`
}

func (c CreateVaultRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.ChainFamily, validation.Required, validation.In("solana", "evm")),
		validation.Field(&c.ChainID, validation.Required),
		validation.Field(&c.Threshold, validation.Required, validation.Min(1)),
		validation.Field(&c.Signers, validation.Required),
	)
}

func (c CreateVaultRequest) ToCoreConfig(ownerAddress string) core.CreateVaultConfig {
	signers := make([]core.SignerConfig, len(c.Signers))
	for i, s := range c.Signers {
		signers[i] = s.ToCoreConfig()
	}

	return core.CreateVaultConfig{
		OwnerAddress:    ownerAddress,
		Name:            c.Name,
		Description:     c.Description,
		ChainFamily:     chain.Family(c.ChainFamily),
		ChainID:         c.ChainID,
		CreateKey:       c.CreateKey,
		DeploymentSalt:  c.DeploymentSalt,
		ContractVersion: c.ContractVersion,
		Threshold:       c.Threshold,
		TimeLock:        c.TimeLock,
		Signers:         signers,
	}
}

type ActivateVaultRequest struct {
	TxHash string `json:"txHash"`
}

func (a ActivateVaultRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.TxHash, validation.Required),
	)
}

type AddSignerRequest struct {
	Signer SignerPayload `json:"signer"`
}

func (a AddSignerRequest) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Signer, validation.Required),
	)
}

type UpdateThresholdRequest struct {
	NewThreshold int `json:"newThreshold"`
}

func (u UpdateThresholdRequest) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.NewThreshold, validation.Required, validation.Min(1)),
	)
}
