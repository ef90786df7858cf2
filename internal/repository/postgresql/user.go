package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// UserRepository is the PostgreSQL-backed directory.
type UserRepository interface {
	user.DirectoryRepository
	user.DirectoryWriter
}

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID implements user.DirectoryRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, email, role, manager_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.ManagerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetRole implements user.DirectoryRepository.
func (r *userRepositoryImpl) GetRole(ctx context.Context, userID string) (user.Role, error) {
	q := GetQuerier(ctx, r.db)

	var role user.Role
	if err := q.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", user.ErrUserNotFound
		}
		return "", fmt.Errorf("get user role: %w", err)
	}
	return role, nil
}

// IsDirectManagerOf implements user.DirectoryRepository.
func (r *userRepositoryImpl) IsDirectManagerOf(ctx context.Context, managerID, userID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND manager_id = $2)`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, managerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check reporting line: %w", err)
	}
	return exists, nil
}

// ListDirectReports implements user.DirectoryRepository.
func (r *userRepositoryImpl) ListDirectReports(ctx context.Context, managerID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, email, role, manager_id, created_at, updated_at
		FROM users
		WHERE manager_id = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("list direct reports: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.ManagerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Upsert implements user.DirectoryWriter.
func (r *userRepositoryImpl) Upsert(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, name, email, role, manager_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role,
			manager_id = EXCLUDED.manager_id, updated_at = EXCLUDED.updated_at
	`

	if _, err := q.Exec(ctx, query, u.ID, u.Name, u.Email, u.Role, u.ManagerID, u.CreatedAt); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
