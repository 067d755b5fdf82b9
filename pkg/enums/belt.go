package enums

import "fmt"

// Belt is the martial-arts rank color held by a graduation.
type Belt string

const (
	BeltWhite  Belt = "WHITE"
	BeltGrey   Belt = "GREY"
	BeltYellow Belt = "YELLOW"
	BeltOrange Belt = "ORANGE"
	BeltGreen  Belt = "GREEN"
	BeltBlue   Belt = "BLUE"
	BeltPurple Belt = "PURPLE"
	BeltBrown  Belt = "BROWN"
	BeltBlack  Belt = "BLACK"
)

// beltPrecedence lists belts from the most to the least senior.
var beltPrecedence = []Belt{
	BeltBlack,
	BeltBrown,
	BeltPurple,
	BeltBlue,
	BeltGreen,
	BeltOrange,
	BeltYellow,
	BeltGrey,
	BeltWhite,
}

// String implements fmt.Stringer.
func (b Belt) String() string {
	return string(b)
}

// IsValid reports whether the value is a known Belt.
func (b Belt) IsValid() bool {
	return b.Precedence() < len(beltPrecedence)
}

// Precedence returns the sort position of the belt, 0 being the most senior.
// Unknown belts sort after every known one.
func (b Belt) Precedence() int {
	for i, candidate := range beltPrecedence {
		if candidate == b {
			return i
		}
	}
	return len(beltPrecedence)
}

// ParseBelt converts raw input into a Belt.
func ParseBelt(value string) (Belt, error) {
	for _, candidate := range beltPrecedence {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid belt %q", value)
}
