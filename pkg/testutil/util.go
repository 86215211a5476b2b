package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/secretsanta/config"
	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/logger"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"golang.org/x/crypto/bcrypt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context carrying a fresh in-memory database with all
// tables migrated. The database has a single connection, every goroutine of a
// test sees the same data.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	cfg := config.Configs{
		Env: "test",
		Auth: config.AuthConfigs{
			PasscodeSecret: "passcode-secret",
			PasscodeCost:   bcrypt.MinCost,
		},
		Party: config.PartyConfigs{
			IDLength:        8,
			PasscodeLength:  12,
			HoldTimeout:     5 * time.Second,
			HoldBackend:     "local",
			MatchingTimeout: time.Second,
		},
		Notification: config.NotificationConfigs{
			Backend:     "log",
			Timeout:     time.Second,
			Concurrency: 4,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}
