package main

import "github.com/urfave/cli/v2"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Load configurations from a TOML `FILE`, environment variables are used as defaults",
	EnvVars: []string{"SANTA_CONFIG"},
}

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "santa"
	app.Usage = "Secret Santa party service"
	app.Flags = []cli.Flag{configFlag}
	app.Before = s.loadContext
	app.After = s.close
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it serves every party and participant api.`,
		},
		{
			Action: s.startMigrate,
			Name:   "migrate",
			Usage:  "Migrate the database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Apply only the migration `VERSION`, all pending migrations if empty",
				},
			},
			Category:    "Database",
			Description: `Used to create or upgrade the database schema.`,
		},
		{
			Action:      s.startMailer,
			Name:        "mailer",
			Usage:       "Start service mailer",
			Category:    "Worker",
			Description: `Used to start worker that delivers the mails queued by the api over SMTP.`,
		},
	}

	s.app = app
}
