package core

import "errors"

var ErrNotFound error = errors.New("not found")
var ErrInvalidConfiguration error = errors.New("invalid configuration")
var ErrUnsupportedChain error = errors.New("unsupported chain")
var ErrVaultNotActive error = errors.New("vault is not active")
var ErrInvalidProposal error = errors.New("invalid proposal")
var ErrUnauthorized error = errors.New("signer not authorized")
var ErrDuplicateVote error = errors.New("signer already voted on this proposal")
var ErrInvalidState error = errors.New("operation not valid in current state")
var ErrInsufficientSignatures error = errors.New("insufficient signatures")
