package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/db"
)

// QuestionRepository handles database operations for questions and answers
type QuestionRepository struct {
	db *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// CreateWithAnswers inserts a question and its answers in one transaction.
func (r *QuestionRepository) CreateWithAnswers(ctx context.Context, question *models.Question, answers []models.Answer) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO questions (question)
			VALUES ($1)
			RETURNING id, created_at
		`

		err := tx.QueryRow(ctx, query, question.Question).
			Scan(&question.ID, &question.CreatedAt)
		if err != nil {
			return fmt.Errorf("error inserting question: %w", err)
		}

		for i := range answers {
			answers[i].QuestionID = question.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO answers (answer, is_correct, question_id) VALUES ($1, $2, $3) RETURNING id, created_at`,
				answers[i].Answer, answers[i].IsCorrect, question.ID).
				Scan(&answers[i].ID, &answers[i].CreatedAt)
			if err != nil {
				return fmt.Errorf("error inserting answer: %w", err)
			}
		}

		return nil
	})
}

// GetByID retrieves a question by ID, nil when not found
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	query := `
		SELECT id, question, created_at
		FROM questions
		WHERE id = $1
	`

	var question models.Question
	err := r.db.QueryRow(ctx, query, id).Scan(
		&question.ID,
		&question.Question,
		&question.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving question: %w", err)
	}

	return &question, nil
}

// GetAll retrieves all questions
func (r *QuestionRepository) GetAll(ctx context.Context) ([]models.Question, error) {
	query := `
		SELECT id, question, created_at
		FROM questions
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var question models.Question
		if err := rows.Scan(&question.ID, &question.Question, &question.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

// ListAnswersByQuestionID returns all answers of a question with correctness flags
func (r *QuestionRepository) ListAnswersByQuestionID(ctx context.Context, questionID int64) ([]models.Answer, error) {
	query := `
		SELECT id, answer, is_correct, question_id, created_at
		FROM answers
		WHERE question_id = $1
	`

	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var answer models.Answer
		if err := rows.Scan(
			&answer.ID,
			&answer.Answer,
			&answer.IsCorrect,
			&answer.QuestionID,
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

// Delete deletes a question and its answers
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting question: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}
