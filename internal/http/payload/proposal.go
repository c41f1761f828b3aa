package payload

import (
	"covault/internal/core"

	"github.com/jellydator/validation"
)

type CreateProposalRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	TxType         string `json:"txType"`
	ToAddress      string `json:"toAddress,omitempty"`
	Amount         string `json:"amount,omitempty"`
	TokenAddress   string `json:"tokenAddress,omitempty"`
	TokenDecimals  int    `json:"tokenDecimals,omitempty"`
	NewThreshold   int    `json:"newThreshold,omitempty"`
	SignerToAdd    string `json:"signerToAdd,omitempty"`
	SignerToRemove string `json:"signerToRemove,omitempty"`
	RawPayload     string `json:"rawPayload,omitempty"`
}

func (c CreateProposalRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.TxType, validation.Required, validation.In(
			"transfer", "token_transfer", "config_change",
			"add_signer", "remove_signer", "change_threshold", "custom")),
	)
}

func (c CreateProposalRequest) ToCoreConfig(vaultID, createdBy string) core.CreateProposalConfig {
	return core.CreateProposalConfig{
		VaultID:        vaultID,
		Title:          c.Title,
		Description:    c.Description,
		TxType:         c.TxType,
		CreatedBy:      createdBy,
		ToAddress:      c.ToAddress,
		Amount:         c.Amount,
		TokenAddress:   c.TokenAddress,
		TokenDecimals:  c.TokenDecimals,
		NewThreshold:   c.NewThreshold,
		SignerToAdd:    c.SignerToAdd,
		SignerToRemove: c.SignerToRemove,
		RawPayload:     c.RawPayload,
	}
}

type VoteRequest struct {
	Vote      string `json:"vote"`
	Signature string `json:"signature,omitempty"`
}

func (v VoteRequest) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Vote, validation.Required, validation.In("approve", "reject")),
	)
}

type MarkExecutedRequest struct {
	TxHash string `json:"txHash"`
}

func (m MarkExecutedRequest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.TxHash, validation.Required),
	)
}
