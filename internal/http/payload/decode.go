package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jellydator/validation"
)

// ErrInvalidPayload marks decode and validation failures so handlers can map
// them to a client error instead of a server one.
var ErrInvalidPayload = errors.New("invalid request payload")

type DecodeValidator struct{}

func (dv DecodeValidator) DecodeAndValidateJSONPayload(r *http.Request, object any) error {
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()
	decoder.DisallowUnknownFields()
	err := decoder.Decode(object)
	if err != nil {
		return fmt.Errorf("%w: decoding json payload: %v", ErrInvalidPayload, err)
	}
	return dv.validatePayload(object)
}

func (dv *DecodeValidator) validatePayload(object any) error {
	t, ok := object.(validation.Validatable)
	if !ok {
		// nothing to validate
		return nil
	}

	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: validating payload: %v", ErrInvalidPayload, err)
	}

	return nil
}
