package user

import (
	"context"
)

// DirectoryRepository exposes the read-only lookups the accounting core needs
// from the user directory.
type DirectoryRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetRole(ctx context.Context, userID string) (Role, error)
	IsDirectManagerOf(ctx context.Context, managerID, userID string) (bool, error)
	ListDirectReports(ctx context.Context, managerID string) ([]User, error)
}

// DirectoryWriter loads directory entries for development seeding and tests.
// Production role assignment happens outside this service.
type DirectoryWriter interface {
	Upsert(ctx context.Context, u User) error
}
