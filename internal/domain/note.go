package domain

// Note is one question-answer-context entry read from a markdown source.
// Its Hash identifies the scheduled card that belongs to it.
type Note struct {
	Question string
	Answer   string
	Context  string
	Hash     string

	// Path and Line locate the note's Q: line.
	Path string
	Line int
}
