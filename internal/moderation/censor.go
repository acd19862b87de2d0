// Package moderation masks banned words in chat messages.
package moderation

import (
	"fmt"
	"slices"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Censor - replaces banned words with a mask rune. Matching ignores case, punctuation
// inside a word and common leet substitutions. Only whole words are masked.
type Censor struct {
	machine *goahocorasick.Machine
	mask    rune
}

// NewCensor - builds the automaton. With no words every message passes unchanged.
func NewCensor(words []string, mask rune) (*Censor, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		pattern, _ := fold([]rune(word))
		if len(pattern) > 0 {
			patterns = append(patterns, pattern)
		}
	}

	censor := &Censor{mask: mask}
	if len(patterns) == 0 {
		return censor, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, fmt.Errorf("failed to build censor automaton: %w", err)
	}
	censor.machine = machine

	return censor, nil
}

func (that *Censor) Apply(text string) string {
	if that.machine == nil {
		return text
	}

	original := []rune(text)
	folded, positions := fold(original)
	if len(folded) == 0 {
		return text
	}

	terms := that.machine.MultiPatternSearch(folded, false)
	if len(terms) == 0 {
		return text
	}

	for _, term := range terms {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(positions) {
			continue
		}

		first, last := positions[term.Pos], positions[end-1]
		if !standalone(original, first, last) {
			continue
		}

		for i := first; i <= last; i++ {
			original[i] = that.mask
		}
	}

	return string(original)
}

// standalone - the match text[first:last+1] is a whole word: no letters or digits touch it
// and it does not span whitespace.
func standalone(text []rune, first, last int) bool {
	if first > 0 && isWordRune(text[first-1]) {
		return false
	}

	if last < len(text)-1 && isWordRune(text[last+1]) {
		return false
	}

	return !slices.ContainsFunc(text[first:last+1], unicode.IsSpace)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// fold - lowercases, maps leet digits back to letters and drops noise runes.
// positions[i] is the index in input of folded[i].
func fold(input []rune) ([]rune, []int) {
	folded := make([]rune, 0, len(input))
	positions := make([]int, 0, len(input))

	for i, r := range input {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}

		folded = append(folded, unicode.ToLower(r))
		positions = append(positions, i)
	}

	return folded, positions
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	default:
		return r
	}
}
