package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
)

// ClassRepository handles database operations for classes and enrollment
type ClassRepository struct {
	db *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create creates a new class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	query := `
		INSERT INTO classes (name, code, description, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query, class.Name, class.Code, class.Description, class.UserID).
		Scan(&class.ID)
	if err != nil {
		return fmt.Errorf("error inserting class: %w", err)
	}

	return nil
}

// GetByID retrieves a class by ID, nil when not found
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	query := `
		SELECT id, name, code, description, user_id
		FROM classes
		WHERE id = $1
	`

	var class models.Class
	err := r.db.QueryRow(ctx, query, id).Scan(
		&class.ID,
		&class.Name,
		&class.Code,
		&class.Description,
		&class.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving class: %w", err)
	}

	return &class, nil
}

// GetAll retrieves all classes
func (r *ClassRepository) GetAll(ctx context.Context) ([]models.Class, error) {
	query := `
		SELECT id, name, code, description, user_id
		FROM classes
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var classes []models.Class
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(
			&class.ID,
			&class.Name,
			&class.Code,
			&class.Description,
			&class.UserID,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		classes = append(classes, class)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return classes, nil
}

// IsClassTeacher reports whether the user is the owning teacher of the class
func (r *ClassRepository) IsClassTeacher(ctx context.Context, userID, classID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1 AND user_id = $2)`

	var isTeacher bool
	if err := r.db.QueryRow(ctx, query, classID, userID).Scan(&isTeacher); err != nil {
		return false, fmt.Errorf("error checking class teacher: %w", err)
	}

	return isTeacher, nil
}

// IsStudentEnrolled reports whether the student is enrolled in the class
func (r *ClassRepository) IsStudentEnrolled(ctx context.Context, classID, studentID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM classes_students WHERE class_id = $1 AND student_id = $2)`

	var enrolled bool
	if err := r.db.QueryRow(ctx, query, classID, studentID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}

	return enrolled, nil
}

// EnrollStudent enrolls a student in a class. Enrolling twice is a no-op.
func (r *ClassRepository) EnrollStudent(ctx context.Context, classID, studentID int64) error {
	query := `
		INSERT INTO classes_students (class_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (class_id, student_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, classID, studentID); err != nil {
		return fmt.Errorf("error enrolling student: %w", err)
	}

	return nil
}
