package models

import (
	"time"
)

// Exam defines the exam model based on the 'exams' table.
// An exam is owned by exactly one class; [StartDate, EndDate] is the window
// during which submissions are accepted.
type Exam struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`
	ClassID   int64     `json:"classId" db:"class_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HasStarted reports whether the exam window has opened at the given instant.
func (e *Exam) HasStarted(now time.Time) bool {
	return !e.StartDate.After(now)
}

// HasEnded reports whether the exam window has closed at the given instant.
func (e *Exam) HasEnded(now time.Time) bool {
	return e.EndDate.Before(now)
}

// StudentAnswer records a student's chosen answer for one question within one
// exam. At most one row exists per (user, exam, question); resubmission
// overwrites the previous answer.
type StudentAnswer struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	ExamID     int64     `json:"examId" db:"exam_id"`
	QuestionID int64     `json:"questionId" db:"question_id"`
	AnswerID   int64     `json:"answerId" db:"answer_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
