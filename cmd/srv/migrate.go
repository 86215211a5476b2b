package main

import (
	"github.com/questx-lab/secretsanta/migration"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())

	version := cctx.String("version")
	if version == "" {
		return migration.Migrate(s.ctx)
	}

	return migration.Run(s.ctx, version)
}
