package models

import (
	"time"
)

// Question defines the question model based on the 'questions' table
type Question struct {
	ID        int64     `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Answer defines the answer model based on the 'answers' table
type Answer struct {
	ID         int64     `json:"id" db:"id"`
	Answer     string    `json:"answer" db:"answer"`
	IsCorrect  bool      `json:"isCorrect" db:"is_correct"`
	QuestionID int64     `json:"questionId" db:"question_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
