package dto

import (
	"time"
)

// CreateExamRequest represents an exam creation request
type CreateExamRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	ClassID   int64     `json:"classId" binding:"required,gt=0"`
}

// UpdateExamRequest represents a partial exam update; only supplied fields
// are changed.
type UpdateExamRequest struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// UpdateExamQuestionsRequest replaces the question set of an exam
type UpdateExamQuestionsRequest struct {
	QuestionIDs []int64 `json:"questionIds" binding:"required"`
}

// SubmitAnswerRequest represents a student's answer submission
type SubmitAnswerRequest struct {
	AnswerID int64 `json:"answerId" binding:"required,gt=0"`
}

// QuestionResult is the per-question outcome inside an exam result.
// AnswerID is models.NoAnswerID when the student never answered.
type QuestionResult struct {
	QuestionID int64 `json:"questionId"`
	AnswerID   int64 `json:"answerId"`
	IsCorrect  bool  `json:"isCorrect"`
}

// StudentExamResult is the computed result of one student for one exam
type StudentExamResult struct {
	UserID    int64            `json:"userId"`
	ExamID    int64            `json:"examId"`
	Score     float64          `json:"score"`
	Questions []QuestionResult `json:"questions"`
}
