package ai

import "context"

// Client is the interface for the AI text backend. A nil or failed response
// must never abort the apply flow; callers degrade to deterministic
// fallbacks instead.
type Client interface {
	// ScoreCompatibility rates a posting against the resume, 0-100.
	ScoreCompatibility(ctx context.Context, jobText, resumeText string) (int, error)

	// AnswerQuestion produces a short, direct answer to a form question
	// using the resume as context.
	AnswerQuestion(ctx context.Context, question, resumeText string) (string, error)
}

func scoringSystemPrompt() string {
	return "You are a recruiting assistant. Given a job description and a candidate resume, " +
		"rate how well the candidate fits the role on a scale of 0 to 100. " +
		"Respond with ONLY the integer, no words, no punctuation."
}

func answerSystemPrompt() string {
	return "You are a helpful job application assistant. Using the provided resume details, " +
		"provide a short, direct answer to the form question. " +
		"If it's a 'How many years' question, respond only with a number. " +
		"If it's a 'Why us' question, write 2-3 professional sentences. " +
		"Language must match the question (Portuguese or English)."
}
