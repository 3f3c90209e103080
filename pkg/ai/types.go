package ai

import "context"

// ActivityContext carries the activity definition presented to the grading oracle.
type ActivityContext struct {
	Title          string
	Description    string
	Instructions   string
	ExpectedFormat string
}

// GradeResult is the structured outcome returned by the grading oracle.
// Grade is on a 0-10 scale.
type GradeResult struct {
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback"`
}

// Grader scores free-text activity submissions.
type Grader interface {
	Grade(ctx context.Context, activity ActivityContext, content string) (GradeResult, error)
}

// ChatTurn is one prior exchange supplied to the assistant for context.
type ChatTurn struct {
	Role    string
	Content string
}

// Assistant answers student questions given recent conversation history.
type Assistant interface {
	Reply(ctx context.Context, history []ChatTurn, message string) (string, error)
}
