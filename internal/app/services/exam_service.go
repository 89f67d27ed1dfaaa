package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/app/models/dto"
	"github.com/danielotaviano/miniprova-api/internal/app/repositories"
	"github.com/danielotaviano/miniprova-api/internal/pkg/apperrors"
)

// ExamRepository is the persistence contract consumed by the exam service.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id int64) (*models.Exam, error)
	GetByClassID(ctx context.Context, classID int64) ([]models.Exam, error)
	Update(ctx context.Context, id int64, patch repositories.ExamPatch) (*models.Exam, error)
	Delete(ctx context.Context, id int64) error
	ReplaceQuestions(ctx context.Context, examID int64, questionIDs []int64) error
	GetQuestionsWithAnswers(ctx context.Context, examID int64) ([]models.Question, map[int64][]models.Answer, error)
	UpsertStudentAnswer(ctx context.Context, answer *models.StudentAnswer) error
	GetStudentAnswer(ctx context.Context, userID, examID, questionID int64) (*models.StudentAnswer, error)
	ListStudentAnswers(ctx context.Context, examID, userID int64) ([]models.StudentAnswer, error)
	ListParticipantIDs(ctx context.Context, examID int64) ([]int64, error)
}

// ClassMembership answers ownership and enrollment questions about classes.
type ClassMembership interface {
	IsClassTeacher(ctx context.Context, userID, classID int64) (bool, error)
	IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error)
	GetClassByID(ctx context.Context, id int64) (*models.Class, error)
}

// QuestionBank resolves questions and their answer options.
type QuestionBank interface {
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	ListAnswersByQuestionID(ctx context.Context, id int64) ([]models.Answer, error)
}

// ExamService defines the interface for exam operations. It is the sole
// authority for exam business rules; every mutating or sensitive read passes
// through it before touching persistence.
type ExamService interface {
	CreateExam(ctx context.Context, callerID int64, req *dto.CreateExamRequest) (*models.Exam, error)
	GetExamByID(ctx context.Context, examID int64) (*models.Exam, error)
	ListExamsByClassID(ctx context.Context, classID int64) ([]models.Exam, error)
	UpdateExam(ctx context.Context, callerID, examID int64, req *dto.UpdateExamRequest) (*models.Exam, error)
	DeleteExam(ctx context.Context, callerID, examID int64) error
	UpdateQuestionsInExam(ctx context.Context, callerID, examID int64, questionIDs []int64) error
	GetQuestionsInExamAsStudent(ctx context.Context, studentID, examID int64) ([]dto.QuestionWithAnswers, error)
	GetQuestionsInExamAsTeacher(ctx context.Context, examID int64) ([]dto.QuestionWithAnswers, error)
	SubmitAnswerToQuestionInExam(ctx context.Context, userID, examID, questionID, answerID int64) error
	GetExamResultsAsStudent(ctx context.Context, userID, examID int64) (*dto.StudentExamResult, error)
	GetExamResultsAsTeacher(ctx context.Context, callerID, examID int64) ([]dto.StudentExamResult, error)
}

// examServiceImpl implements ExamService
type examServiceImpl struct {
	examRepo  ExamRepository
	members   ClassMembership
	questions QuestionBank
	now       func() time.Time
}

// NewExamService creates a new ExamService
func NewExamService(examRepo ExamRepository, members ClassMembership, questions QuestionBank) ExamService {
	return &examServiceImpl{
		examRepo:  examRepo,
		members:   members,
		questions: questions,
		now:       time.Now,
	}
}

// CreateExam creates a new exam owned by one of the caller's classes
func (s *examServiceImpl) CreateExam(ctx context.Context, callerID int64, req *dto.CreateExamRequest) (*models.Exam, error) {
	isTeacher, err := s.members.IsClassTeacher(ctx, callerID, req.ClassID)
	if err != nil {
		return nil, fmt.Errorf("error checking class teacher: %w", err)
	}
	if !isTeacher {
		return nil, apperrors.ErrPermissionDenied
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewBadRequestError("Name is required")
	}

	if !req.StartDate.Before(req.EndDate) {
		return nil, apperrors.NewBadRequestError("End date must be after start date")
	}

	if !req.StartDate.After(s.now()) {
		return nil, apperrors.NewBadRequestError("Start date must be in the future")
	}

	exam := &models.Exam{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		ClassID:   req.ClassID,
	}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("error creating exam: %w", err)
	}

	return exam, nil
}

// GetExamByID retrieves an exam by ID, nil when not found
func (s *examServiceImpl) GetExamByID(ctx context.Context, examID int64) (*models.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam: %w", err)
	}
	return exam, nil
}

// ListExamsByClassID retrieves all exams of a class
func (s *examServiceImpl) ListExamsByClassID(ctx context.Context, classID int64) ([]models.Exam, error) {
	class, err := s.members.GetClassByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("error getting class: %w", err)
	}
	if class == nil {
		return nil, apperrors.NewBadRequestError("Class not found")
	}

	exams, err := s.examRepo.GetByClassID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("error listing exams: %w", err)
	}

	return exams, nil
}

// UpdateExam applies a partial update; omitted fields retain previous values.
func (s *examServiceImpl) UpdateExam(ctx context.Context, callerID, examID int64, req *dto.UpdateExamRequest) (*models.Exam, error) {
	existing, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam: %w", err)
	}
	if existing == nil {
		return nil, apperrors.NewBadRequestError("Exam not found")
	}

	if err := s.requireOwningTeacher(ctx, callerID, existing.ClassID); err != nil {
		return nil, err
	}

	if req.StartDate != nil && req.EndDate != nil {
		if !req.StartDate.Before(*req.EndDate) {
			return nil, apperrors.NewBadRequestError("End date must be after start date")
		}
	}

	if req.StartDate != nil && !req.StartDate.After(s.now()) {
		return nil, apperrors.NewBadRequestError("Start date must be in the future")
	}

	exam, err := s.examRepo.Update(ctx, examID, repositories.ExamPatch{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("error updating exam: %w", err)
	}

	return exam, nil
}

// DeleteExam deletes an exam owned by the caller's class
func (s *examServiceImpl) DeleteExam(ctx context.Context, callerID, examID int64) error {
	existing, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("error getting exam: %w", err)
	}
	if existing == nil {
		return apperrors.NewBadRequestError("Exam not found")
	}

	if err := s.requireOwningTeacher(ctx, callerID, existing.ClassID); err != nil {
		return err
	}

	if err := s.examRepo.Delete(ctx, examID); err != nil {
		return fmt.Errorf("error deleting exam: %w", err)
	}

	return nil
}

// UpdateQuestionsInExam atomically replaces the exam's question set. The
// paper cannot change once the exam is live.
func (s *examServiceImpl) UpdateQuestionsInExam(ctx context.Context, callerID, examID int64, questionIDs []int64) error {
	existing, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("error getting exam: %w", err)
	}
	if existing == nil {
		return apperrors.NewBadRequestError("Exam not found")
	}

	if err := s.requireOwningTeacher(ctx, callerID, existing.ClassID); err != nil {
		return err
	}

	if existing.HasStarted(s.now()) {
		return apperrors.NewBadRequestError("Exam already started")
	}

	// First missing question wins, remaining ids are not checked
	for _, questionID := range questionIDs {
		question, err := s.questions.GetQuestionByID(ctx, questionID)
		if err != nil {
			return fmt.Errorf("error getting question %d: %w", questionID, err)
		}
		if question == nil {
			return apperrors.NewBadRequestError(fmt.Sprintf("Question %d not found", questionID))
		}
	}

	if err := s.examRepo.ReplaceQuestions(ctx, examID, questionIDs); err != nil {
		return fmt.Errorf("error replacing exam questions: %w", err)
	}

	return nil
}

// GetQuestionsInExamAsStudent returns the exam's questions for an enrolled
// student. Correctness flags are redacted while the exam is still open.
func (s *examServiceImpl) GetQuestionsInExamAsStudent(ctx context.Context, studentID, examID int64) ([]dto.QuestionWithAnswers, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam: %w", err)
	}
	if exam == nil {
		return nil, apperrors.NewBadRequestError("Exam not found")
	}

	enrolled, err := s.members.IsStudentEnrolled(ctx, exam.ClassID, studentID)
	if err != nil {
		return nil, fmt.Errorf("error checking enrollment: %w", err)
	}
	if !enrolled {
		return nil, apperrors.ErrPermissionDenied
	}

	now := s.now()
	if !exam.HasStarted(now) {
		return nil, apperrors.NewBadRequestError("Exam not started yet")
	}

	redact := !exam.HasEnded(now)
	return s.collectQuestions(ctx, examID, redact)
}

// GetQuestionsInExamAsTeacher returns the exam's questions with correctness flags
func (s *examServiceImpl) GetQuestionsInExamAsTeacher(ctx context.Context, examID int64) ([]dto.QuestionWithAnswers, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam: %w", err)
	}
	if exam == nil {
		return nil, apperrors.NewBadRequestError("Exam not found")
	}

	return s.collectQuestions(ctx, examID, false)
}

// SubmitAnswerToQuestionInExam upserts the student's answer keyed by
// (user, exam, question). The submission window is [StartDate, EndDate]
// inclusive.
func (s *examServiceImpl) SubmitAnswerToQuestionInExam(ctx context.Context, userID, examID, questionID, answerID int64) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("error getting exam: %w", err)
	}
	if exam == nil {
		return apperrors.NewBadRequestError("Exam not found")
	}

	enrolled, err := s.members.IsStudentEnrolled(ctx, exam.ClassID, userID)
	if err != nil {
		return fmt.Errorf("error checking enrollment: %w", err)
	}
	if !enrolled {
		return apperrors.ErrPermissionDenied
	}

	now := s.now()
	if !exam.HasStarted(now) {
		return apperrors.NewBadRequestError("Exam not started yet")
	}
	if exam.HasEnded(now) {
		return apperrors.NewBadRequestError("Exam already ended")
	}

	question, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("error getting question: %w", err)
	}
	if question == nil {
		return apperrors.NewBadRequestError("Question not found")
	}

	answers, err := s.questions.ListAnswersByQuestionID(ctx, questionID)
	if err != nil {
		return fmt.Errorf("error listing answers: %w", err)
	}

	var chosen *models.Answer
	for i := range answers {
		if answers[i].ID == answerID {
			chosen = &answers[i]
			break
		}
	}
	if chosen == nil || chosen.QuestionID != questionID {
		return apperrors.NewBadRequestError("Answer not found")
	}

	answer := &models.StudentAnswer{
		UserID:     userID,
		ExamID:     examID,
		QuestionID: questionID,
		AnswerID:   answerID,
	}
	if err := s.examRepo.UpsertStudentAnswer(ctx, answer); err != nil {
		return fmt.Errorf("error submitting answer: %w", err)
	}

	return nil
}

// GetExamResultsAsStudent computes the caller's result. Results are
// unavailable while the exam is open.
func (s *examServiceImpl) GetExamResultsAsStudent(ctx context.Context, userID, examID int64) (*dto.StudentExamResult, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam: %w", err)
	}
	if exam == nil {
		return nil, apperrors.NewBadRequestError("Exam not found")
	}

	now := s.now()
	if !exam.HasStarted(now) {
		return nil, apperrors.NewBadRequestError("Exam not started yet")
	}
	if !exam.HasEnded(now) {
		return nil, apperrors.NewBadRequestError("Exam not ended yet")
	}

	result, err := s.computeResult(ctx, examID, userID)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetExamResultsAsTeacher computes one result per distinct student who
// submitted at least one answer. Students with zero submissions are absent.
func (s *examServiceImpl) GetExamResultsAsTeacher(ctx context.Context, callerID, examID int64) ([]dto.StudentExamResult, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam: %w", err)
	}
	if exam == nil {
		return nil, apperrors.NewBadRequestError("Exam not found")
	}

	if err := s.requireOwningTeacher(ctx, callerID, exam.ClassID); err != nil {
		return nil, err
	}

	participantIDs, err := s.examRepo.ListParticipantIDs(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}

	results := make([]dto.StudentExamResult, 0, len(participantIDs))
	for _, studentID := range participantIDs {
		result, err := s.computeResult(ctx, examID, studentID)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, nil
}

// requireOwningTeacher returns ErrPermissionDenied unless the caller is the
// teacher of the given class
func (s *examServiceImpl) requireOwningTeacher(ctx context.Context, callerID, classID int64) error {
	isTeacher, err := s.members.IsClassTeacher(ctx, callerID, classID)
	if err != nil {
		return fmt.Errorf("error checking class teacher: %w", err)
	}
	if !isTeacher {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// collectQuestions fetches the exam's questions with answers, redacting
// correctness when requested
func (s *examServiceImpl) collectQuestions(ctx context.Context, examID int64, redact bool) ([]dto.QuestionWithAnswers, error) {
	questions, answersByQuestion, err := s.examRepo.GetQuestionsWithAnswers(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam questions: %w", err)
	}

	result := make([]dto.QuestionWithAnswers, 0, len(questions))
	for _, question := range questions {
		answers := answersByQuestion[question.ID]
		views := make([]dto.AnswerView, 0, len(answers))
		for _, answer := range answers {
			view := dto.AnswerView{
				ID:     answer.ID,
				Answer: answer.Answer,
			}
			if !redact {
				isCorrect := answer.IsCorrect
				view.IsCorrect = &isCorrect
			}
			views = append(views, view)
		}
		result = append(result, dto.QuestionWithAnswers{
			ID:       question.ID,
			Question: question.Question,
			Answers:  views,
		})
	}

	return result, nil
}

// computeResult derives the exam result for one student. A question without a
// submitted answer counts as incorrect and reports models.NoAnswerID.
func (s *examServiceImpl) computeResult(ctx context.Context, examID, userID int64) (*dto.StudentExamResult, error) {
	questions, answersByQuestion, err := s.examRepo.GetQuestionsWithAnswers(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("error getting exam questions: %w", err)
	}

	submissions, err := s.examRepo.ListStudentAnswers(ctx, examID, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing student answers: %w", err)
	}

	chosenByQuestion := make(map[int64]int64, len(submissions))
	for _, submission := range submissions {
		chosenByQuestion[submission.QuestionID] = submission.AnswerID
	}

	questionResults := make([]dto.QuestionResult, 0, len(questions))
	correctCount := 0
	for _, question := range questions {
		qr := dto.QuestionResult{
			QuestionID: question.ID,
			AnswerID:   models.NoAnswerID,
		}

		if answerID, ok := chosenByQuestion[question.ID]; ok {
			qr.AnswerID = answerID
			for _, answer := range answersByQuestion[question.ID] {
				if answer.ID == answerID {
					qr.IsCorrect = answer.IsCorrect
					break
				}
			}
		}

		if qr.IsCorrect {
			correctCount++
		}
		questionResults = append(questionResults, qr)
	}

	score := 0.0
	if len(questions) > 0 {
		score = float64(correctCount) / float64(len(questions))
	}

	return &dto.StudentExamResult{
		UserID:    userID,
		ExamID:    examID,
		Score:     score,
		Questions: questionResults,
	}, nil
}
