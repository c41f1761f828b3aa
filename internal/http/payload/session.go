package payload

import (
	"github.com/jellydator/validation"
)

type SessionRequest struct {
	Address string `json:"address"`
}

func (s SessionRequest) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, validation.Length(20, 64)),
	)
}
