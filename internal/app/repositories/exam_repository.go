package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/db"
)

// ExamRepository handles database operations for exams, their question sets
// and student answers. Pure data access, no business rules.
type ExamRepository struct {
	db *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(db *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create creates a new exam
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	query := `
		INSERT INTO exams (name, start_date, end_date, class_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, exam.Name, exam.StartDate, exam.EndDate, exam.ClassID).
		Scan(&exam.ID, &exam.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting exam: %w", err)
	}

	return nil
}

// GetByID retrieves an exam by ID, nil when not found
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*models.Exam, error) {
	query := `
		SELECT id, name, start_date, end_date, class_id, created_at
		FROM exams
		WHERE id = $1
	`

	var exam models.Exam
	err := r.db.QueryRow(ctx, query, id).Scan(
		&exam.ID,
		&exam.Name,
		&exam.StartDate,
		&exam.EndDate,
		&exam.ClassID,
		&exam.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving exam: %w", err)
	}

	return &exam, nil
}

// GetByClassID retrieves all exams belonging to a class
func (r *ExamRepository) GetByClassID(ctx context.Context, classID int64) ([]models.Exam, error) {
	query := `
		SELECT id, name, start_date, end_date, class_id, created_at
		FROM exams
		WHERE class_id = $1
	`

	rows, err := r.db.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		if err := rows.Scan(
			&exam.ID,
			&exam.Name,
			&exam.StartDate,
			&exam.EndDate,
			&exam.ClassID,
			&exam.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		exams = append(exams, exam)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exams, nil
}

// ExamPatch carries the fields of a partial exam update; nil means unchanged.
type ExamPatch struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Update applies a partial update to an exam and returns the updated row.
// Only non-nil fields of the patch are changed.
func (r *ExamRepository) Update(ctx context.Context, id int64, patch ExamPatch) (*models.Exam, error) {
	query := squirrel.Update("exams").
		Where("id = ?", id).
		Suffix("RETURNING id, name, start_date, end_date, class_id, created_at").
		PlaceholderFormat(squirrel.Dollar)

	if patch.Name != nil {
		query = query.Set("name", *patch.Name)
	}
	if patch.StartDate != nil {
		query = query.Set("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		query = query.Set("end_date", *patch.EndDate)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var exam models.Exam
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&exam.ID,
		&exam.Name,
		&exam.StartDate,
		&exam.EndDate,
		&exam.ClassID,
		&exam.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &exam, nil
}

// Delete deletes an exam; question set and student answers cascade
func (r *ExamRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting exam: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}

// ReplaceQuestions atomically replaces the question set of an exam. Either
// the whole new set is installed or the previous one stays untouched.
func (r *ExamRepository) ReplaceQuestions(ctx context.Context, examID int64, questionIDs []int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1`, examID); err != nil {
			return fmt.Errorf("error clearing exam questions: %w", err)
		}

		for _, questionID := range questionIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO exam_questions (exam_id, question_id) VALUES ($1, $2)`,
				examID, questionID)
			if err != nil {
				return fmt.Errorf("error inserting exam question %d: %w", questionID, err)
			}
		}

		return nil
	})
}

// GetQuestionsWithAnswers fetches the exam's questions joined with their answers
func (r *ExamRepository) GetQuestionsWithAnswers(ctx context.Context, examID int64) ([]models.Question, map[int64][]models.Answer, error) {
	query := `
		SELECT q.id, q.question, q.created_at,
		       a.id, a.answer, a.is_correct, a.question_id, a.created_at
		FROM exam_questions eq
		JOIN questions q ON q.id = eq.question_id
		JOIN answers a ON a.question_id = q.id
		WHERE eq.exam_id = $1
		ORDER BY q.id, a.id
	`

	rows, err := r.db.Query(ctx, query, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	answersByQuestion := make(map[int64][]models.Answer)
	seen := make(map[int64]bool)

	for rows.Next() {
		var question models.Question
		var answer models.Answer
		if err := rows.Scan(
			&question.ID,
			&question.Question,
			&question.CreatedAt,
			&answer.ID,
			&answer.Answer,
			&answer.IsCorrect,
			&answer.QuestionID,
			&answer.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("error scanning row: %w", err)
		}

		if !seen[question.ID] {
			seen[question.ID] = true
			questions = append(questions, question)
		}
		answersByQuestion[question.ID] = append(answersByQuestion[question.ID], answer)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return questions, answersByQuestion, nil
}

// UpsertStudentAnswer inserts or overwrites the student's answer for one
// question within one exam, keyed by (user, exam, question).
func (r *ExamRepository) UpsertStudentAnswer(ctx context.Context, answer *models.StudentAnswer) error {
	query := `
		INSERT INTO student_answers (user_id, exam_id, question_id, answer_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, exam_id, question_id)
		DO UPDATE SET answer_id = EXCLUDED.answer_id, created_at = CURRENT_TIMESTAMP
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, answer.UserID, answer.ExamID, answer.QuestionID, answer.AnswerID).
		Scan(&answer.ID, &answer.CreatedAt)
	if err != nil {
		return fmt.Errorf("error upserting student answer: %w", err)
	}

	return nil
}

// GetStudentAnswer point lookup of a student's answer for a question, nil when absent
func (r *ExamRepository) GetStudentAnswer(ctx context.Context, userID, examID, questionID int64) (*models.StudentAnswer, error) {
	query := `
		SELECT id, user_id, exam_id, question_id, answer_id, created_at
		FROM student_answers
		WHERE user_id = $1 AND exam_id = $2 AND question_id = $3
	`

	var answer models.StudentAnswer
	err := r.db.QueryRow(ctx, query, userID, examID, questionID).Scan(
		&answer.ID,
		&answer.UserID,
		&answer.ExamID,
		&answer.QuestionID,
		&answer.AnswerID,
		&answer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving student answer: %w", err)
	}

	return &answer, nil
}

// ListStudentAnswers returns all answers one student submitted within an exam
func (r *ExamRepository) ListStudentAnswers(ctx context.Context, examID, userID int64) ([]models.StudentAnswer, error) {
	query := `
		SELECT id, user_id, exam_id, question_id, answer_id, created_at
		FROM student_answers
		WHERE exam_id = $1 AND user_id = $2
	`

	rows, err := r.db.Query(ctx, query, examID, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var answers []models.StudentAnswer
	for rows.Next() {
		var answer models.StudentAnswer
		if err := rows.Scan(
			&answer.ID,
			&answer.UserID,
			&answer.ExamID,
			&answer.QuestionID,
			&answer.AnswerID,
			&answer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}

// ListParticipantIDs returns the distinct ids of students who submitted at
// least one answer to this exam
func (r *ExamRepository) ListParticipantIDs(ctx context.Context, examID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT user_id
		FROM student_answers
		WHERE exam_id = $1
		ORDER BY user_id
	`

	rows, err := r.db.Query(ctx, query, examID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return userIDs, nil
}
