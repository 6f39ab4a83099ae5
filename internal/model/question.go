package model

// QuizQuestion is a multiple-choice question with exactly four options.
// Correct always equals one of Options on a successfully generated quiz.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct,omitempty"`
}

// Public strips the answer key before a question is sent to the client.
func (q QuizQuestion) Public() QuizQuestion {
	q.Correct = ""
	return q
}

// ResumeDocument is the uploaded resume handed to the question source.
type ResumeDocument struct {
	MimeType string
	// Text holds the extracted content for plain-text uploads; Base64
	// carries the raw bytes for binary formats (PDF).
	Text   string
	Base64 string
}
