package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantNotes int
		wantQ     string
		wantA     string
		wantC     string
	}{
		{
			name:      "simple Q&A",
			input:     "Q: What is the capital of France?\nA: Paris",
			wantNotes: 1,
			wantQ:     "What is the capital of France?",
			wantA:     "Paris",
		},
		{
			name:      "Q, A and C",
			input:     "Q: What is 1+1?\nA: 2\nC: Basic arithmetic",
			wantNotes: 1,
			wantQ:     "What is 1+1?",
			wantA:     "2",
			wantC:     "Basic arithmetic",
		},
		{
			name: "multiline answer",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			wantNotes: 1,
			wantQ:     "What are the primary colors?",
			wantA:     "Red\nBlue\nYellow",
		},
		{
			name: "two notes",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			wantNotes: 2,
		},
		{
			name: "separator ends a note",
			input: `Q: Stability
A: Days until recall drops to 90%
---
Unrelated prose that is not part of any note.
`,
			wantNotes: 1,
			wantQ:     "Stability",
			wantA:     "Days until recall drops to 90%",
		},
		{
			name:      "no notes",
			input:     "This is a file with no questions.",
			wantNotes: 0,
		},
		{
			name:      "answer without question",
			input:     "A: orphan answer\nC: orphan context",
			wantNotes: 0,
		},
		{
			name:      "prefixes with no space",
			input:     "Q:Question\nA:Answer",
			wantNotes: 1,
			wantQ:     "Question",
			wantA:     "Answer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notes, err := Parse(strings.NewReader(tc.input))
			require.NoError(t, err)
			require.Len(t, notes, tc.wantNotes)

			if tc.wantNotes == 1 {
				assert.Equal(t, tc.wantQ, notes[0].Question)
				assert.Equal(t, tc.wantA, notes[0].Answer)
				assert.Equal(t, tc.wantC, notes[0].Context)
			}
		})
	}
}

func TestParseTwoNotesKeepFieldsApart(t *testing.T) {
	notes, err := Parse(strings.NewReader("Q: one\nA: 1\n\nQ: two\nA: 2\nC: numbers\n"))
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, "one", notes[0].Question)
	assert.Equal(t, "1", notes[0].Answer)
	assert.Empty(t, notes[0].Context)
	assert.Equal(t, 1, notes[0].Line)

	assert.Equal(t, "two", notes[1].Question)
	assert.Equal(t, "numbers", notes[1].Context)
	assert.Equal(t, 4, notes[1].Line)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	require.NoError(t, os.WriteFile(path, []byte("# Deck\n\nQ: What does FSRS stand for?\nA: Free Spaced Repetition Scheduler\n"), 0o644))

	notes, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, path, notes[0].Path)
	assert.Equal(t, 3, notes[0].Line)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
