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

// ClassService handles class and enrollment operations. It also backs the
// ClassMembership contract consumed by the exam service.
type ClassService struct {
	classRepo *repositories.ClassRepository
	userRepo  *repositories.UserRepository
}

// NewClassService creates a new class service instance
func NewClassService(classRepo *repositories.ClassRepository, userRepo *repositories.UserRepository) *ClassService {
	return &ClassService{
		classRepo: classRepo,
		userRepo:  userRepo,
	}
}

// CreateClass creates a class owned by the caller
func (s *ClassService) CreateClass(ctx context.Context, callerID int64, req *dto.CreateClassRequest) (*models.Class, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewBadRequestError("Name is required")
	}

	class := &models.Class{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		UserID:      callerID,
	}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("error creating class: %w", err)
	}

	return class, nil
}

// GetClassByID retrieves a class by ID, nil when not found
func (s *ClassService) GetClassByID(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting class: %w", err)
	}
	return class, nil
}

// ListClasses retrieves all classes
func (s *ClassService) ListClasses(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	return classes, nil
}

// IsClassTeacher reports whether the user is the owning teacher of the class
func (s *ClassService) IsClassTeacher(ctx context.Context, userID, classID int64) (bool, error) {
	return s.classRepo.IsClassTeacher(ctx, userID, classID)
}

// IsStudentEnrolled reports whether the student is enrolled in the class
func (s *ClassService) IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error) {
	return s.classRepo.IsStudentEnrolled(ctx, classID, studentID)
}

// EnrollStudent enrolls a student in the caller's class. Only the owning
// teacher can enroll students.
func (s *ClassService) EnrollStudent(ctx context.Context, callerID, classID, studentID int64) error {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return fmt.Errorf("error getting class: %w", err)
	}
	if class == nil {
		return apperrors.NewBadRequestError("Class not found")
	}

	if class.UserID != callerID {
		return apperrors.ErrPermissionDenied
	}

	student, err := s.userRepo.GetWithRoles(ctx, studentID)
	if err != nil {
		return fmt.Errorf("error getting student: %w", err)
	}
	if student == nil {
		return apperrors.NewBadRequestError("Student not found")
	}
	if !student.HasRole(models.RoleStudent) {
		return apperrors.NewBadRequestError("User is not a student")
	}

	if err := s.classRepo.EnrollStudent(ctx, classID, studentID); err != nil {
		return fmt.Errorf("error enrolling student: %w", err)
	}

	return nil
}
