package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/app/models/dto"
	"github.com/danielotaviano/miniprova-api/internal/app/repositories"
	"github.com/danielotaviano/miniprova-api/internal/pkg/apperrors"
)

// QuestionService handles question bank operations. It also backs the
// QuestionBank contract consumed by the exam service.
type QuestionService struct {
	questionRepo *repositories.QuestionRepository
}

// NewQuestionService creates a new question service instance
func NewQuestionService(questionRepo *repositories.QuestionRepository) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
	}
}

// CreateQuestion creates a question together with its answer options. The
// question and all answers are inserted atomically.
func (s *QuestionService) CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest) (*models.Question, []models.Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, nil, apperrors.NewBadRequestError("Question is required")
	}
	if len(req.Answers) == 0 {
		return nil, nil, apperrors.NewBadRequestError("Must have at least 1 answer")
	}
	for _, answer := range req.Answers {
		if strings.TrimSpace(answer.Answer) == "" {
			return nil, nil, apperrors.NewBadRequestError("Answer is required")
		}
	}

	question := &models.Question{Question: req.Question}
	answers := make([]models.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, models.Answer{
			Answer:    a.Answer,
			IsCorrect: a.IsCorrect,
		})
	}

	if err := s.questionRepo.CreateWithAnswers(ctx, question, answers); err != nil {
		return nil, nil, fmt.Errorf("error creating question: %w", err)
	}

	return question, answers, nil
}

// GetQuestionByID retrieves a question by ID, nil when not found
func (s *QuestionService) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting question: %w", err)
	}
	return question, nil
}

// ListQuestions retrieves all questions
func (s *QuestionService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	questions, err := s.questionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	return questions, nil
}

// ListAnswersByQuestionID returns all answers of a question with correctness flags
func (s *QuestionService) ListAnswersByQuestionID(ctx context.Context, id int64) ([]models.Answer, error) {
	answers, err := s.questionRepo.ListAnswersByQuestionID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing answers: %w", err)
	}
	return answers, nil
}

// DeleteQuestion deletes a question and its answers
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int64) error {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting question: %w", err)
	}
	if question == nil {
		return apperrors.NewResourceNotFoundError("Question not found")
	}

	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting question: %w", err)
	}

	return nil
}
