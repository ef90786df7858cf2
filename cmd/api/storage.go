package main

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/sqlite"
)

type directory interface {
	user.DirectoryRepository
	user.DirectoryWriter
}

// repositories is the storage backend selected by STORAGE_DRIVER.
type repositories struct {
	tx         database.Transactor
	leave      leave.LeaveRequestRepository
	attendance attendance.AttendanceRepository
	directory  directory
	close      func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		if err := database.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			tx:         postgresql.NewTransactor(db),
			leave:      postgresql.NewLeaveRequestRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			directory:  postgresql.NewUserRepository(db),
			close:      db.Close,
		}, nil

	case "sqlite":
		db, err := database.NewSQLiteDB(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			tx:         sqlite.NewTransactor(db),
			leave:      sqlite.NewLeaveRequestRepository(db),
			attendance: sqlite.NewAttendanceRepository(db),
			directory:  sqlite.NewUserRepository(db),
			close:      func() { db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
