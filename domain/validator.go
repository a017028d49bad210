package domain

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateInbound checks the shape of a client message before it is routed.
func ValidateInbound(m InboundMessage) error {
	return validate.Struct(m)
}

func ValidateMember(m Member) error {
	return validate.Struct(m)
}
