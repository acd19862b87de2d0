package entity

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rocketscienceinc/tictactoe-socket/internal/apperror"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate - checks the struct tags of a payload.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	return nil
}

// DecodePayload - unmarshals raw into dst and validates it.
func DecodePayload(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidPayload, err)
	}

	return Validate(dst)
}
