package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/fsrsched/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	separator      = "---"
)

type field int

const (
	seeking field = iota
	readingQuestion
	readingAnswer
	readingContext
)

// noteBuilder accumulates the lines of the field currently being read.
type noteBuilder struct {
	path  string
	notes []domain.Note
	note  domain.Note
	field field
	block []string
}

// flushField stores the pending block in the field it belongs to.
func (b *noteBuilder) flushField() {
	if b.field == seeking || len(b.block) == 0 {
		b.block = nil
		return
	}
	content := strings.TrimRight(strings.Join(b.block, "\n"), " \t\n")
	switch b.field {
	case readingQuestion:
		b.note.Question = content
	case readingAnswer:
		b.note.Answer = content
	case readingContext:
		b.note.Context = content
	}
	b.block = nil
}

// finish closes the current note. Notes without a question are dropped.
func (b *noteBuilder) finish() {
	b.flushField()
	if b.note.Question != "" {
		b.notes = append(b.notes, b.note)
	}
	b.note = domain.Note{Path: b.path}
	b.field = seeking
}

func (b *noteBuilder) start(f field, line string, prefix string) {
	b.flushField()
	b.field = f
	b.block = append(b.block, strings.TrimPrefix(line[len(prefix):], " "))
}

// ParseFile reads a markdown file and extracts all notes, recording the
// file path on each.
func ParseFile(path string) ([]domain.Note, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	notes, err := parse(file, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return notes, nil
}

// Parse reads from an io.Reader and extracts all notes.
func Parse(r io.Reader) ([]domain.Note, error) {
	return parse(r, "")
}

func parse(r io.Reader, path string) ([]domain.Note, error) {
	scanner := bufio.NewScanner(r)
	b := &noteBuilder{path: path, note: domain.Note{Path: path}}

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()

		switch {
		case line == separator:
			b.finish()
		case strings.HasPrefix(line, questionPrefix):
			// A new question always starts a new note.
			if b.field != seeking {
				b.finish()
			}
			b.note.Line = lineNo
			b.start(readingQuestion, line, questionPrefix)
		case strings.HasPrefix(line, answerPrefix):
			b.start(readingAnswer, line, answerPrefix)
		case strings.HasPrefix(line, contextPrefix):
			b.start(readingContext, line, contextPrefix)
		case b.field != seeking:
			b.block = append(b.block, line)
		}
	}
	b.finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.notes, nil
}
