// internal/game/evaluate.go
//
// GuessEvaluator: per-letter verdicts for a guess against the secret word.

package game

import (
	"strings"

	"github.com/robalobadob/wordrush/internal/apperr"
)

// Evaluate scores guess against secret using the two-pass algorithm.
//
// Pass 1 marks exact matches correct and counts the secret's remaining
// (unmatched) letters. Pass 2 marks each remaining guess letter present if an
// unconsumed instance is left, consuming it, else absent. A letter is never
// credited more times than it occurs in the secret, and exact matches win.
func Evaluate(secret, guess string) ([]Verdict, error) {
	secret = strings.ToLower(secret)
	guess = strings.ToLower(guess)
	if len(guess) != len(secret) {
		return nil, apperr.ErrLengthMismatch
	}

	n := len(guess)
	res := make([]Verdict, n)
	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == secret[i] {
			res[i] = VerdictCorrect
		} else if j := idx(secret[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == VerdictCorrect {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && counts[j] > 0 {
			res[i] = VerdictPresent
			counts[j]--
		} else {
			res[i] = VerdictAbsent
		}
	}
	return res, nil
}

// idx maps a lowercase ASCII letter to 0..25, or -1.
func idx(c byte) int {
	if c < 'a' || c > 'z' {
		return -1
	}
	return int(c - 'a')
}

// AllCorrect reports whether every verdict is correct.
func AllCorrect(vs []Verdict) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if v != VerdictCorrect {
			return false
		}
	}
	return true
}

// CountCorrect returns the number of correct verdicts.
func CountCorrect(vs []Verdict) int {
	n := 0
	for _, v := range vs {
		if v == VerdictCorrect {
			n++
		}
	}
	return n
}
