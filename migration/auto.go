package migration

import (
	"context"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Party{},
		&entity.Participant{},
		&entity.Assignment{},
		&entity.Migration{},
	)
}
