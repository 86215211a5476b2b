package migration

import (
	"context"
	"errors"
	"sort"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

var Migrators = map[string]func(context.Context) error{
	"0000": migrate0000,
	"0001": migrate0001,
}

// Migrate runs every migrator whose version is not recorded yet, in version
// order, and records it.
func Migrate(ctx context.Context) error {
	if err := xcontext.DB(ctx).AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	versions := make([]string, 0, len(Migrators))
	for version := range Migrators {
		versions = append(versions, version)
	}
	sort.Strings(versions)

	for _, version := range versions {
		if err := Run(ctx, version); err != nil {
			return err
		}
	}

	return nil
}

// Run applies a single migrator if it has not been applied yet.
func Run(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return errors.New("unknown migration version " + version)
	}

	var applied entity.Migration
	err := xcontext.DB(ctx).Take(&applied, "version=?", version).Error
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	xcontext.Logger(ctx).Infof("Apply migration %s", version)
	if err := migrator(ctx); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error
}
