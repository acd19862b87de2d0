package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// Symbol - the mark a player puts on the board. Empty marks a free cell.
type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "x"
	O     Symbol = "o"
)

func (that Symbol) IsValid() bool {
	return that == X || that == O
}

func (that Symbol) Opponent() Symbol {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// MarshalJSON - encodes an empty cell as null.
func (that Symbol) MarshalJSON() ([]byte, error) {
	if that == Empty {
		return []byte("null"), nil
	}

	return json.Marshal(string(that))
}

// UnmarshalJSON - accepts null, "" and the string "null" as an empty cell.
func (that *Symbol) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*that = Empty
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSymbol, data)
	}

	switch value := Symbol(strings.ToLower(raw)); value {
	case Empty, "null":
		*that = Empty
	case X, O:
		*that = value
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}

	return nil
}
