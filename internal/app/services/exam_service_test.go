package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/app/models/dto"
	"github.com/danielotaviano/miniprova-api/internal/app/repositories"
	"github.com/danielotaviano/miniprova-api/internal/pkg/apperrors"
)

// fakeSchool is an in-memory backing store implementing ExamRepository,
// ClassMembership and QuestionBank.
type fakeSchool struct {
	nextExamID    int64
	exams         map[int64]*models.Exam
	examQuestions map[int64][]int64
	classes       map[int64]*models.Class
	enrolled      map[int64]map[int64]bool
	questions     map[int64]*models.Question
	answers       map[int64][]models.Answer
	submissions   []models.StudentAnswer
}

func newFakeSchool() *fakeSchool {
	return &fakeSchool{
		exams:         make(map[int64]*models.Exam),
		examQuestions: make(map[int64][]int64),
		classes:       make(map[int64]*models.Class),
		enrolled:      make(map[int64]map[int64]bool),
		questions:     make(map[int64]*models.Question),
		answers:       make(map[int64][]models.Answer),
	}
}

func (f *fakeSchool) Create(_ context.Context, exam *models.Exam) error {
	f.nextExamID++
	exam.ID = f.nextExamID
	exam.CreatedAt = time.Now()
	stored := *exam
	f.exams[exam.ID] = &stored
	return nil
}

func (f *fakeSchool) GetByID(_ context.Context, id int64) (*models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, nil
	}
	cp := *exam
	return &cp, nil
}

func (f *fakeSchool) GetByClassID(_ context.Context, classID int64) ([]models.Exam, error) {
	var out []models.Exam
	for _, exam := range f.exams {
		if exam.ClassID == classID {
			out = append(out, *exam)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSchool) Update(_ context.Context, id int64, patch repositories.ExamPatch) (*models.Exam, error) {
	exam, ok := f.exams[id]
	if !ok {
		return nil, fmt.Errorf("exam %d missing", id)
	}
	if patch.Name != nil {
		exam.Name = *patch.Name
	}
	if patch.StartDate != nil {
		exam.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		exam.EndDate = *patch.EndDate
	}
	cp := *exam
	return &cp, nil
}

func (f *fakeSchool) Delete(_ context.Context, id int64) error {
	delete(f.exams, id)
	delete(f.examQuestions, id)
	return nil
}

func (f *fakeSchool) ReplaceQuestions(_ context.Context, examID int64, questionIDs []int64) error {
	f.examQuestions[examID] = append([]int64(nil), questionIDs...)
	return nil
}

func (f *fakeSchool) GetQuestionsWithAnswers(_ context.Context, examID int64) ([]models.Question, map[int64][]models.Answer, error) {
	ids := append([]int64(nil), f.examQuestions[examID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	questions := make([]models.Question, 0, len(ids))
	answersByQuestion := make(map[int64][]models.Answer, len(ids))
	for _, id := range ids {
		question, ok := f.questions[id]
		if !ok {
			continue
		}
		questions = append(questions, *question)
		answersByQuestion[id] = append([]models.Answer(nil), f.answers[id]...)
	}
	return questions, answersByQuestion, nil
}

func (f *fakeSchool) UpsertStudentAnswer(_ context.Context, answer *models.StudentAnswer) error {
	for i := range f.submissions {
		s := &f.submissions[i]
		if s.UserID == answer.UserID && s.ExamID == answer.ExamID && s.QuestionID == answer.QuestionID {
			s.AnswerID = answer.AnswerID
			return nil
		}
	}
	stored := *answer
	stored.ID = int64(len(f.submissions) + 1)
	f.submissions = append(f.submissions, stored)
	return nil
}

func (f *fakeSchool) GetStudentAnswer(_ context.Context, userID, examID, questionID int64) (*models.StudentAnswer, error) {
	for i := range f.submissions {
		s := f.submissions[i]
		if s.UserID == userID && s.ExamID == examID && s.QuestionID == questionID {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSchool) ListStudentAnswers(_ context.Context, examID, userID int64) ([]models.StudentAnswer, error) {
	var out []models.StudentAnswer
	for _, s := range f.submissions {
		if s.ExamID == examID && s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSchool) ListParticipantIDs(_ context.Context, examID int64) ([]int64, error) {
	seen := make(map[int64]bool)
	var out []int64
	for _, s := range f.submissions {
		if s.ExamID == examID && !seen[s.UserID] {
			seen[s.UserID] = true
			out = append(out, s.UserID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f *fakeSchool) IsClassTeacher(_ context.Context, userID, classID int64) (bool, error) {
	class, ok := f.classes[classID]
	return ok && class.UserID == userID, nil
}

func (f *fakeSchool) IsStudentEnrolled(_ context.Context, classID, studentID int64) (bool, error) {
	return f.enrolled[classID][studentID], nil
}

func (f *fakeSchool) GetClassByID(_ context.Context, id int64) (*models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, nil
	}
	cp := *class
	return &cp, nil
}

func (f *fakeSchool) GetQuestionByID(_ context.Context, id int64) (*models.Question, error) {
	question, ok := f.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *question
	return &cp, nil
}

func (f *fakeSchool) ListAnswersByQuestionID(_ context.Context, id int64) ([]models.Answer, error) {
	return append([]models.Answer(nil), f.answers[id]...), nil
}

func (f *fakeSchool) addClass(id, teacherID int64, students ...int64) {
	f.classes[id] = &models.Class{ID: id, Name: fmt.Sprintf("class-%d", id), Code: fmt.Sprintf("C%d", id), UserID: teacherID}
	set := make(map[int64]bool, len(students))
	for _, s := range students {
		set[s] = true
	}
	f.enrolled[id] = set
}

func (f *fakeSchool) addQuestion(id int64, text string, answerIDs []int64, correctID int64) {
	f.questions[id] = &models.Question{ID: id, Question: text}
	answers := make([]models.Answer, 0, len(answerIDs))
	for _, aid := range answerIDs {
		answers = append(answers, models.Answer{
			ID:         aid,
			Answer:     fmt.Sprintf("option-%d", aid),
			IsCorrect:  aid == correctID,
			QuestionID: id,
		})
	}
	f.answers[id] = answers
}

func (f *fakeSchool) addExam(id, classID int64, start, end time.Time, questionIDs ...int64) {
	f.exams[id] = &models.Exam{ID: id, Name: fmt.Sprintf("exam-%d", id), StartDate: start, EndDate: end, ClassID: classID}
	if id > f.nextExamID {
		f.nextExamID = id
	}
	f.examQuestions[id] = append([]int64(nil), questionIDs...)
}

func newTestService(school *fakeSchool, now time.Time) *examServiceImpl {
	return &examServiceImpl{
		examRepo:  school,
		members:   school,
		questions: school,
		now:       func() time.Time { return now },
	}
}

const (
	teacherID = int64(10)
	studentID = int64(20)
	otherID   = int64(30)
	classID   = int64(1)
)

func TestCreateExam(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		callerID  int64
		req       dto.CreateExamRequest
		wantErr   string
		forbidden bool
	}{
		{
			name:     "valid exam",
			callerID: teacherID,
			req: dto.CreateExamRequest{
				Name:      "Midterm",
				StartDate: now.Add(time.Hour),
				EndDate:   now.Add(3 * time.Hour),
				ClassID:   classID,
			},
		},
		{
			name:      "caller is not the class teacher",
			callerID:  otherID,
			req:       dto.CreateExamRequest{Name: "Midterm", StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour), ClassID: classID},
			forbidden: true,
		},
		{
			name:     "empty name",
			callerID: teacherID,
			req:      dto.CreateExamRequest{Name: "  ", StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour), ClassID: classID},
			wantErr:  "Name is required",
		},
		{
			name:     "end before start",
			callerID: teacherID,
			req:      dto.CreateExamRequest{Name: "Midterm", StartDate: now.Add(2 * time.Hour), EndDate: now.Add(time.Hour), ClassID: classID},
			wantErr:  "End date must be after start date",
		},
		{
			name:     "start equals end",
			callerID: teacherID,
			req:      dto.CreateExamRequest{Name: "Midterm", StartDate: now.Add(time.Hour), EndDate: now.Add(time.Hour), ClassID: classID},
			wantErr:  "End date must be after start date",
		},
		{
			name:     "start not in the future",
			callerID: teacherID,
			req:      dto.CreateExamRequest{Name: "Midterm", StartDate: now, EndDate: now.Add(time.Hour), ClassID: classID},
			wantErr:  "Start date must be in the future",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			school := newFakeSchool()
			school.addClass(classID, teacherID, studentID)
			svc := newTestService(school, now)

			exam, err := svc.CreateExam(context.Background(), tc.callerID, &tc.req)
			if tc.forbidden {
				if !errors.Is(err, apperrors.ErrPermissionDenied) {
					t.Fatalf("expected permission denied, got %v", err)
				}
				return
			}
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("expected error %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exam.ID == 0 {
				t.Fatalf("expected assigned exam id")
			}

			got, err := svc.GetExamByID(context.Background(), exam.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || got.Name != tc.req.Name || !got.StartDate.Equal(tc.req.StartDate) || !got.EndDate.Equal(tc.req.EndDate) {
				t.Fatalf("stored exam does not match request: %+v", got)
			}
		})
	}
}

func TestGetExamByIDAbsent(t *testing.T) {
	svc := newTestService(newFakeSchool(), time.Now())

	exam, err := svc.GetExamByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exam != nil {
		t.Fatalf("expected nil for absent exam, got %+v", exam)
	}
}

func TestListExamsByClassID(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	school := newFakeSchool()
	school.addClass(classID, teacherID)
	school.addExam(1, classID, now.Add(time.Hour), now.Add(2*time.Hour))
	school.addExam(2, classID, now.Add(3*time.Hour), now.Add(4*time.Hour))
	school.addClass(2, teacherID)
	school.addExam(3, 2, now.Add(time.Hour), now.Add(2*time.Hour))
	svc := newTestService(school, now)

	exams, err := svc.ListExamsByClassID(context.Background(), classID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("expected 2 exams, got %d", len(exams))
	}

	_, err = svc.ListExamsByClassID(context.Background(), 999)
	if err == nil || err.Error() != "Class not found" {
		t.Fatalf("expected Class not found, got %v", err)
	}
}

func TestUpdateExam(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(time.Hour)
	end := now.Add(3 * time.Hour)

	newName := "Final"
	newStart := now.Add(2 * time.Hour)
	badStart := now.Add(-time.Hour)
	badEnd := now.Add(90 * time.Minute)

	tests := []struct {
		name     string
		callerID int64
		examID   int64
		req      dto.UpdateExamRequest
		wantErr  string
	}{
		{name: "rename only", callerID: teacherID, examID: 1, req: dto.UpdateExamRequest{Name: &newName}},
		{name: "move start", callerID: teacherID, examID: 1, req: dto.UpdateExamRequest{StartDate: &newStart}},
		{name: "unknown exam", callerID: teacherID, examID: 99, req: dto.UpdateExamRequest{Name: &newName}, wantErr: "Exam not found"},
		{name: "start in the past", callerID: teacherID, examID: 1, req: dto.UpdateExamRequest{StartDate: &badStart}, wantErr: "Start date must be in the future"},
		{name: "inverted dates", callerID: teacherID, examID: 1, req: dto.UpdateExamRequest{StartDate: &newStart, EndDate: &badEnd}, wantErr: "End date must be after start date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			school := newFakeSchool()
			school.addClass(classID, teacherID)
			school.addExam(1, classID, start, end)
			svc := newTestService(school, now)

			updated, err := svc.UpdateExam(context.Background(), tc.callerID, tc.examID, &tc.req)
			if tc.wantErr != "" {
				if err == nil || err.Error() != tc.wantErr {
					t.Fatalf("expected error %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.req.Name != nil && updated.Name != *tc.req.Name {
				t.Fatalf("name not updated: %+v", updated)
			}
			if tc.req.Name == nil && updated.Name != "exam-1" {
				t.Fatalf("omitted name should keep previous value, got %q", updated.Name)
			}
			if tc.req.StartDate == nil && !updated.StartDate.Equal(start) {
				t.Fatalf("omitted start date should keep previous value, got %v", updated.StartDate)
			}
		})
	}

	t.Run("non-owner forbidden", func(t *testing.T) {
		school := newFakeSchool()
		school.addClass(classID, teacherID)
		school.addExam(1, classID, start, end)
		svc := newTestService(school, now)

		_, err := svc.UpdateExam(context.Background(), otherID, 1, &dto.UpdateExamRequest{Name: &newName})
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("expected permission denied, got %v", err)
		}
	})
}

func TestDeleteExam(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	school := newFakeSchool()
	school.addClass(classID, teacherID)
	school.addExam(1, classID, now.Add(time.Hour), now.Add(2*time.Hour))
	svc := newTestService(school, now)

	if err := svc.DeleteExam(context.Background(), otherID, 1); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	if err := svc.DeleteExam(context.Background(), teacherID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exam, err := svc.GetExamByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exam != nil {
		t.Fatalf("exam should be gone, got %+v", exam)
	}

	if err := svc.DeleteExam(context.Background(), teacherID, 1); err == nil || err.Error() != "Exam not found" {
		t.Fatalf("expected Exam not found, got %v", err)
	}
}

func TestUpdateQuestionsInExam(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	setup := func(start time.Time) (*fakeSchool, *examServiceImpl) {
		school := newFakeSchool()
		school.addClass(classID, teacherID)
		school.addExam(1, classID, start, start.Add(2*time.Hour), 1)
		school.addQuestion(1, "q1", []int64{11, 12}, 11)
		school.addQuestion(2, "q2", []int64{21, 22}, 21)
		return school, newTestService(school, now)
	}

	t.Run("replaces the question set", func(t *testing.T) {
		school, svc := setup(now.Add(time.Hour))

		if err := svc.UpdateQuestionsInExam(context.Background(), teacherID, 1, []int64{2}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := school.examQuestions[1]; len(got) != 1 || got[0] != 2 {
			t.Fatalf("question set not replaced: %v", got)
		}
	})

	t.Run("rejects once the exam started", func(t *testing.T) {
		school, svc := setup(now.Add(-time.Minute))

		err := svc.UpdateQuestionsInExam(context.Background(), teacherID, 1, []int64{2})
		if err == nil || err.Error() != "Exam already started" {
			t.Fatalf("expected Exam already started, got %v", err)
		}
		if got := school.examQuestions[1]; len(got) != 1 || got[0] != 1 {
			t.Fatalf("question set should be unchanged after rejection: %v", got)
		}
	})

	t.Run("rejects at the exact start instant", func(t *testing.T) {
		_, svc := setup(now)

		err := svc.UpdateQuestionsInExam(context.Background(), teacherID, 1, []int64{2})
		if err == nil || err.Error() != "Exam already started" {
			t.Fatalf("expected Exam already started, got %v", err)
		}
	})

	t.Run("first unknown question wins", func(t *testing.T) {
		school, svc := setup(now.Add(time.Hour))

		err := svc.UpdateQuestionsInExam(context.Background(), teacherID, 1, []int64{2, 99, 98})
		if err == nil || err.Error() != "Question 99 not found" {
			t.Fatalf("expected Question 99 not found, got %v", err)
		}
		if got := school.examQuestions[1]; len(got) != 1 || got[0] != 1 {
			t.Fatalf("question set should be unchanged after rejection: %v", got)
		}
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		_, svc := setup(now.Add(time.Hour))

		err := svc.UpdateQuestionsInExam(context.Background(), otherID, 1, []int64{2})
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("expected permission denied, got %v", err)
		}
	})
}

func TestGetQuestionsInExamAsStudent(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	setup := func(start, end time.Time) *examServiceImpl {
		school := newFakeSchool()
		school.addClass(classID, teacherID, studentID)
		school.addQuestion(1, "q1", []int64{11, 12}, 11)
		school.addExam(1, classID, start, end, 1)
		return newTestService(school, now)
	}

	t.Run("before start", func(t *testing.T) {
		svc := setup(now.Add(time.Hour), now.Add(2*time.Hour))
		_, err := svc.GetQuestionsInExamAsStudent(context.Background(), studentID, 1)
		if err == nil || err.Error() != "Exam not started yet" {
			t.Fatalf("expected Exam not started yet, got %v", err)
		}
	})

	t.Run("open exam redacts correctness", func(t *testing.T) {
		svc := setup(now.Add(-time.Hour), now.Add(time.Hour))
		questions, err := svc.GetQuestionsInExamAsStudent(context.Background(), studentID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(questions) != 1 || len(questions[0].Answers) != 2 {
			t.Fatalf("unexpected shape: %+v", questions)
		}
		for _, answer := range questions[0].Answers {
			if answer.IsCorrect != nil {
				t.Fatalf("correctness must be hidden while the exam is open")
			}
		}
	})

	t.Run("closed exam reveals correctness", func(t *testing.T) {
		svc := setup(now.Add(-2*time.Hour), now.Add(-time.Hour))
		questions, err := svc.GetQuestionsInExamAsStudent(context.Background(), studentID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var correct int
		for _, answer := range questions[0].Answers {
			if answer.IsCorrect == nil {
				t.Fatalf("correctness must be visible after the exam ended")
			}
			if *answer.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			t.Fatalf("expected exactly one correct answer, got %d", correct)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		svc := setup(now.Add(-time.Hour), now.Add(time.Hour))
		_, err := svc.GetQuestionsInExamAsStudent(context.Background(), otherID, 1)
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("expected permission denied, got %v", err)
		}
	})
}

func TestGetQuestionsInExamAsTeacher(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	school := newFakeSchool()
	school.addClass(classID, teacherID)
	school.addQuestion(1, "q1", []int64{11, 12}, 12)
	school.addExam(1, classID, now.Add(-time.Hour), now.Add(time.Hour), 1)
	svc := newTestService(school, now)

	questions, err := svc.GetQuestionsInExamAsTeacher(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, answer := range questions[0].Answers {
		if answer.IsCorrect == nil {
			t.Fatalf("teacher view must always include correctness")
		}
	}
}

func TestSubmitAnswerToQuestionInExam(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := base
	end := base.Add(2 * time.Hour)

	setup := func(now time.Time) (*fakeSchool, *examServiceImpl) {
		school := newFakeSchool()
		school.addClass(classID, teacherID, studentID)
		school.addQuestion(1, "q1", []int64{11, 12}, 11)
		school.addQuestion(2, "q2", []int64{21, 22}, 21)
		school.addExam(1, classID, start, end, 1, 2)
		return school, newTestService(school, now)
	}

	t.Run("accepts within the window", func(t *testing.T) {
		school, svc := setup(start.Add(time.Hour))

		if err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 12); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(school.submissions) != 1 || school.submissions[0].AnswerID != 12 {
			t.Fatalf("submission not stored: %+v", school.submissions)
		}
	})

	t.Run("accepts at the exact start and end instants", func(t *testing.T) {
		for _, now := range []time.Time{start, end} {
			_, svc := setup(now)
			if err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 11); err != nil {
				t.Fatalf("boundary submission at %v should succeed, got %v", now, err)
			}
		}
	})

	t.Run("resubmission overwrites", func(t *testing.T) {
		school, svc := setup(start.Add(time.Hour))

		if err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 11); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 12); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(school.submissions) != 1 {
			t.Fatalf("expected a single submission per question, got %d", len(school.submissions))
		}
		if school.submissions[0].AnswerID != 12 {
			t.Fatalf("resubmission should overwrite, got answer %d", school.submissions[0].AnswerID)
		}
	})

	t.Run("before start", func(t *testing.T) {
		_, svc := setup(start.Add(-time.Minute))
		err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 11)
		if err == nil || err.Error() != "Exam not started yet" {
			t.Fatalf("expected Exam not started yet, got %v", err)
		}
	})

	t.Run("after end", func(t *testing.T) {
		_, svc := setup(end.Add(time.Minute))
		err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 11)
		if err == nil || err.Error() != "Exam already ended" {
			t.Fatalf("expected Exam already ended, got %v", err)
		}
	})

	t.Run("answer belongs to another question", func(t *testing.T) {
		school, svc := setup(start.Add(time.Hour))

		err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 1, 21)
		if err == nil || err.Error() != "Answer not found" {
			t.Fatalf("expected Answer not found, got %v", err)
		}
		if len(school.submissions) != 0 {
			t.Fatalf("rejected submission must not be stored")
		}
	})

	t.Run("unknown question", func(t *testing.T) {
		_, svc := setup(start.Add(time.Hour))
		err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, 99, 11)
		if err == nil || err.Error() != "Question not found" {
			t.Fatalf("expected Question not found, got %v", err)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		_, svc := setup(start.Add(time.Hour))
		err := svc.SubmitAnswerToQuestionInExam(context.Background(), otherID, 1, 1, 11)
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("expected permission denied, got %v", err)
		}
	})
}

func TestGetExamResultsAsStudent(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := base
	end := base.Add(2 * time.Hour)

	// Four questions, correct answers 11, 21, 31, 41.
	setup := func(now time.Time) (*fakeSchool, *examServiceImpl) {
		school := newFakeSchool()
		school.addClass(classID, teacherID, studentID)
		school.addQuestion(1, "q1", []int64{11, 12}, 11)
		school.addQuestion(2, "q2", []int64{21, 22}, 21)
		school.addQuestion(3, "q3", []int64{31, 32}, 31)
		school.addQuestion(4, "q4", []int64{41, 42}, 41)
		school.addExam(1, classID, start, end, 1, 2, 3, 4)
		return school, newTestService(school, now)
	}

	submit := func(t *testing.T, school *fakeSchool, questionID, answerID int64) {
		t.Helper()
		svc := newTestService(school, start.Add(time.Hour))
		if err := svc.SubmitAnswerToQuestionInExam(context.Background(), studentID, 1, questionID, answerID); err != nil {
			t.Fatalf("seeding submission failed: %v", err)
		}
	}

	t.Run("unavailable before end", func(t *testing.T) {
		_, svc := setup(start.Add(time.Hour))
		_, err := svc.GetExamResultsAsStudent(context.Background(), studentID, 1)
		if err == nil || err.Error() != "Exam not ended yet" {
			t.Fatalf("expected Exam not ended yet, got %v", err)
		}
	})

	t.Run("unavailable before start", func(t *testing.T) {
		_, svc := setup(start.Add(-time.Minute))
		_, err := svc.GetExamResultsAsStudent(context.Background(), studentID, 1)
		if err == nil || err.Error() != "Exam not started yet" {
			t.Fatalf("expected Exam not started yet, got %v", err)
		}
	})

	t.Run("three of four correct scores 0.75", func(t *testing.T) {
		school, svc := setup(end.Add(time.Minute))
		submit(t, school, 1, 11)
		submit(t, school, 2, 21)
		submit(t, school, 3, 31)
		submit(t, school, 4, 42)

		result, err := svc.GetExamResultsAsStudent(context.Background(), studentID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Score != 0.75 {
			t.Fatalf("expected score 0.75, got %v", result.Score)
		}
		if len(result.Questions) != 4 {
			t.Fatalf("expected 4 question results, got %d", len(result.Questions))
		}
	})

	t.Run("unanswered questions count against the score", func(t *testing.T) {
		school, svc := setup(end.Add(time.Minute))
		submit(t, school, 1, 11)

		result, err := svc.GetExamResultsAsStudent(context.Background(), studentID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Score != 0.25 {
			t.Fatalf("expected score 0.25, got %v", result.Score)
		}

		unanswered := 0
		for _, qr := range result.Questions {
			if qr.AnswerID == models.NoAnswerID {
				unanswered++
				if qr.IsCorrect {
					t.Fatalf("unanswered question cannot be correct")
				}
			}
		}
		if unanswered != 3 {
			t.Fatalf("expected 3 unanswered questions, got %d", unanswered)
		}
	})

	t.Run("no submissions scores zero", func(t *testing.T) {
		_, svc := setup(end.Add(time.Minute))

		result, err := svc.GetExamResultsAsStudent(context.Background(), studentID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Score != 0.0 {
			t.Fatalf("expected score 0, got %v", result.Score)
		}
		for _, qr := range result.Questions {
			if qr.AnswerID != models.NoAnswerID {
				t.Fatalf("expected sentinel answer id, got %d", qr.AnswerID)
			}
		}
	})
}

func TestGetExamResultsAsTeacher(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	start := base
	end := base.Add(2 * time.Hour)

	school := newFakeSchool()
	secondStudent := int64(21)
	school.addClass(classID, teacherID, studentID, secondStudent)
	school.addQuestion(1, "q1", []int64{11, 12}, 11)
	school.addQuestion(2, "q2", []int64{21, 22}, 21)
	school.addExam(1, classID, start, end, 1, 2)

	during := newTestService(school, start.Add(time.Hour))
	for _, sub := range []struct{ user, question, answer int64 }{
		{studentID, 1, 11},
		{studentID, 2, 22},
		{secondStudent, 1, 11},
		{secondStudent, 2, 21},
		{secondStudent, 2, 21}, // resubmission must not duplicate the participant
	} {
		if err := during.SubmitAnswerToQuestionInExam(context.Background(), sub.user, 1, sub.question, sub.answer); err != nil {
			t.Fatalf("seeding submission failed: %v", err)
		}
	}

	svc := newTestService(school, end.Add(time.Minute))

	t.Run("non-owner forbidden", func(t *testing.T) {
		_, err := svc.GetExamResultsAsTeacher(context.Background(), otherID, 1)
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("expected permission denied, got %v", err)
		}
	})

	t.Run("one result per participant", func(t *testing.T) {
		results, err := svc.GetExamResultsAsTeacher(context.Background(), teacherID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 participants, got %d", len(results))
		}

		scores := map[int64]float64{}
		for _, r := range results {
			scores[r.UserID] = r.Score
		}
		if scores[studentID] != 0.5 {
			t.Fatalf("expected 0.5 for first student, got %v", scores[studentID])
		}
		if scores[secondStudent] != 1.0 {
			t.Fatalf("expected 1.0 for second student, got %v", scores[secondStudent])
		}
	})

	t.Run("students without submissions are absent", func(t *testing.T) {
		extra := int64(22)
		school.enrolled[classID][extra] = true

		results, err := svc.GetExamResultsAsTeacher(context.Background(), teacherID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range results {
			if r.UserID == extra {
				t.Fatalf("student without submissions must not appear in results")
			}
		}
	})
}
