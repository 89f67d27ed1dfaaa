package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danielotaviano/miniprova-api/internal/app/models"
	"github.com/danielotaviano/miniprova-api/internal/db"
	"github.com/danielotaviano/miniprova-api/internal/pkg/apperrors"
	"github.com/danielotaviano/miniprova-api/internal/pkg/dberrors"
)

// UserRepository handles database operations for users and their roles
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithRoles inserts a user and its role assignments in one transaction.
func (r *UserRepository) CreateWithRoles(ctx context.Context, user *models.User, roles []models.RoleType) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO users (name, email, password)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`

		err := tx.QueryRow(ctx, query, user.Name, user.Email, user.Password).
			Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
				return apperrors.ErrEmailAlreadyExists
			}
			return fmt.Errorf("error inserting user: %w", err)
		}

		for _, role := range roles {
			_, err := tx.Exec(ctx,
				`INSERT INTO users_roles (user_id, role_name) VALUES ($1, $2)`,
				user.ID, string(role))
			if err != nil {
				return fmt.Errorf("error assigning role %s: %w", role, err)
			}
		}

		user.Roles = roles
		return nil
	})
}

// GetByID retrieves a user by ID, nil when not found
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, name, email, password, created_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by email, nil when not found
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving user by email: %w", err)
	}

	return &user, nil
}

// GetRolesByUserID returns the role set assigned to a user
func (r *UserRepository) GetRolesByUserID(ctx context.Context, userID int64) ([]models.RoleType, error) {
	query := `
		SELECT role_name
		FROM users_roles
		WHERE user_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user roles: %w", err)
	}
	defer rows.Close()

	var roles []models.RoleType
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("error scanning role: %w", err)
		}
		roles = append(roles, models.RoleType(role))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return roles, nil
}

// GetWithRoles retrieves a user together with their role set, nil when not found
func (r *UserRepository) GetWithRoles(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil || user == nil {
		return user, err
	}

	roles, err := r.GetRolesByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return user, nil
}
