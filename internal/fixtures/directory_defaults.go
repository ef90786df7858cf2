package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/google/uuid"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func strPtr(s string) *string { return &s }

// directoryNamespace keeps demo IDs stable across runs so tokens minted for
// them stay usable after a restart.
var directoryNamespace = uuid.MustParse("6f1c1f0e-3b7a-4c55-9d3e-2a6f4d8b9c01")

// DemoUserID returns the deterministic ID of a demo user by email.
func DemoUserID(email string) string {
	return uuid.NewSHA1(directoryNamespace, []byte(email)).String()
}

// ==========================================
// DEFAULT DIRECTORY
// ==========================================

// GetDemoDirectory returns a small organisation: one admin, one HR officer,
// two managers and their direct reports.
func GetDemoDirectory(now time.Time) []user.User {
	admin := DemoUserID("admin@example.com")
	hr := DemoUserID("hr@example.com")
	engManager := DemoUserID("eng.manager@example.com")
	opsManager := DemoUserID("ops.manager@example.com")

	return []user.User{
		{ID: admin, Name: "Ayu Admin", Email: "admin@example.com", Role: user.RoleAdmin, CreatedAt: now},
		{ID: hr, Name: "Hana HR", Email: "hr@example.com", Role: user.RoleHR, ManagerID: strPtr(admin), CreatedAt: now},
		{ID: engManager, Name: "Eko Manager", Email: "eng.manager@example.com", Role: user.RoleManager, ManagerID: strPtr(admin), CreatedAt: now},
		{ID: opsManager, Name: "Oka Manager", Email: "ops.manager@example.com", Role: user.RoleManager, ManagerID: strPtr(admin), CreatedAt: now},
		{ID: DemoUserID("dewi@example.com"), Name: "Dewi Engineer", Email: "dewi@example.com", Role: user.RoleEmployee, ManagerID: strPtr(engManager), CreatedAt: now},
		{ID: DemoUserID("budi@example.com"), Name: "Budi Engineer", Email: "budi@example.com", Role: user.RoleEmployee, ManagerID: strPtr(engManager), CreatedAt: now},
		{ID: DemoUserID("sari@example.com"), Name: "Sari Operator", Email: "sari@example.com", Role: user.RoleEmployee, ManagerID: strPtr(opsManager), CreatedAt: now},
	}
}

// SeedDemoDirectory upserts the demo directory. Managers are written before
// their reports so the manager foreign key always resolves.
func SeedDemoDirectory(ctx context.Context, writer user.DirectoryWriter, now time.Time) (int, error) {
	users := GetDemoDirectory(now)
	for _, u := range users {
		if err := writer.Upsert(ctx, u); err != nil {
			return 0, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}
	return len(users), nil
}
