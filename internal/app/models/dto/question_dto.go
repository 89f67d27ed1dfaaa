package dto

// CreateQuestionRequest represents a question creation request with its answers
type CreateQuestionRequest struct {
	Question string                `json:"question" binding:"required"`
	Answers  []CreateAnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// CreateAnswerRequest represents one answer option of a new question
type CreateAnswerRequest struct {
	Answer    string `json:"answer" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// AnswerView is an answer as shown inside an exam. IsCorrect is nil when
// correctness is redacted (students looking at a still-open exam).
type AnswerView struct {
	ID        int64  `json:"id"`
	Answer    string `json:"answer"`
	IsCorrect *bool  `json:"isCorrect"`
}

// QuestionWithAnswers is a question together with its answer options
type QuestionWithAnswers struct {
	ID       int64        `json:"id"`
	Question string       `json:"question"`
	Answers  []AnswerView `json:"answers"`
}
