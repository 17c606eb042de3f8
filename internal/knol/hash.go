// Package knol derives the stable identity of a note from its content.
package knol

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/conorfennell/fsrsched/internal/domain"
)

// normalizePart lowercases, trims and unifies line endings.
func normalizePart(part string) string {
	p := strings.ReplaceAll(part, "\r\n", "\n")
	return strings.ToLower(strings.TrimSpace(p))
}

// Normalize joins the cleaned question, answer and context with newlines
// so adjacent fields cannot run together.
func Normalize(n domain.Note) string {
	return strings.Join([]string{
		normalizePart(n.Question),
		normalizePart(n.Answer),
		normalizePart(n.Context),
	}, "\n")
}

// Hash returns the hex SHA-256 of the normalized note. Editing a note's
// text gives it a new hash and therefore a fresh schedule.
func Hash(n domain.Note) string {
	sum := sha256.Sum256([]byte(Normalize(n)))
	return hex.EncodeToString(sum[:])
}

// Stamp fills in the Hash of every note.
func Stamp(notes []domain.Note) {
	for i := range notes {
		notes[i].Hash = Hash(notes[i])
	}
}
