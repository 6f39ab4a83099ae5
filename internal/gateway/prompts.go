package gateway

import (
	"fmt"
	"strings"

	"github.com/intervue/intervue-backend/internal/model"
)

const questionSystemPrompt = `You are a technical interviewer. You are given a candidate's resume.
Produce exactly 5 spoken-interview questions tailored to the resume.
Respond with a JSON array of strings and nothing else.`

const quizSystemPrompt = `You are a quiz author. Produce 10 multiple-choice questions on the given
subject. Respond with a JSON array of objects and nothing else, each shaped as
{"question": "...", "options": ["a","b","c","d"], "correct": "..."} where
"correct" is exactly one of the four options.`

const scoreSystemPrompt = `You are an interview coach grading one spoken answer.
Respond with a JSON object and nothing else, shaped as
{"feedback": "...", "score": N} where N is an integer from 1 to 5.`

const summarySystemPrompt = `You are an interview coach writing a final review of a mock interview.
Respond with a JSON object and nothing else, shaped as
{"strengths": "...", "areas_for_improvement": "..."}.`

func buildQuestionPrompt(doc model.ResumeDocument) string {
	if doc.Text != "" {
		return "Resume (plain text):\n\n" + doc.Text
	}
	return fmt.Sprintf("Resume (%s, base64):\n\n%s", doc.MimeType, doc.Base64)
}

func buildQuizPrompt(subject string) string {
	return "Subject: " + subject
}

func buildScorePrompt(question, answer string) string {
	return fmt.Sprintf("Question: %s\n\nCandidate's answer: %s", question, answer)
}

func buildSummaryPrompt(results []model.EvaluatedResult) string {
	var sb strings.Builder
	sb.WriteString("Scored interview transcript:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. Q: %s\n   A: %s\n   Score: %d/5\n", i+1, r.Question, r.Answer, r.Score)
	}
	return sb.String()
}

func buildQuizSummaryPrompt(subject string, score, total int) string {
	return fmt.Sprintf("The candidate took a %q quiz and answered %d of %d questions correctly.", subject, score, total)
}
