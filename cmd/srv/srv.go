package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/secretsanta/config"
	"github.com/questx-lab/secretsanta/internal/client"
	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/internal/domain"
	"github.com/questx-lab/secretsanta/internal/domain/matching"
	"github.com/questx-lab/secretsanta/internal/repository"
	"github.com/questx-lab/secretsanta/pkg/crypto"
	"github.com/questx-lab/secretsanta/pkg/kafka"
	"github.com/questx-lab/secretsanta/pkg/logger"
	"github.com/questx-lab/secretsanta/pkg/mailer"
	"github.com/questx-lab/secretsanta/pkg/pubsub"
	"github.com/questx-lab/secretsanta/pkg/router"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"github.com/questx-lab/secretsanta/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	partyRepo       repository.PartyRepository
	participantRepo repository.ParticipantRepository
	assignmentRepo  repository.AssignmentRepository

	partyLocker common.PartyLocker
	mailCaller  client.MailCaller
	publisher   interface {
		pubsub.Publisher
		Stop(context.Context) error
	}

	partyDomain       domain.PartyDomain
	participantDomain domain.ParticipantDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadContext(cctx *cli.Context) error {
	if err := s.loadConfig(cctx.String(configFlag.Name)); err != nil {
		return err
	}

	s.logger = logger.NewLogger(s.configs.Env)
	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, *s.configs)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
	return nil
}

func (s *srv) close(*cli.Context) error {
	if s.publisher != nil {
		if err := s.publisher.Stop(s.ctx); err != nil {
			s.logger.Errorf("Cannot stop publisher: %v", err)
		}
	}

	if l, ok := s.logger.(interface{ Sync() }); ok {
		l.Sync()
	}
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := s.configs.Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(), // data source name
			DefaultStringSize:         256,                    // default size for string fields
			DisableDatetimePrecision:  true,                   // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,                   // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,                   // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false,                  // auto configure based on currently MySQL version
		})
	}

	gormCfg := &gorm.Config{}
	if s.configs.Env == "prod" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Error)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		panic(err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite serializes writers, a single connection avoids busy errors.
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db
}

func (s *srv) loadRepos() {
	s.partyRepo = repository.NewPartyRepository()
	s.participantRepo = repository.NewParticipantRepository()
	s.assignmentRepo = repository.NewAssignmentRepository()
}

func (s *srv) loadPartyLocker() {
	switch s.configs.Party.HoldBackend {
	case "redis":
		redisClient, err := xredis.NewClient(s.ctx)
		if err != nil {
			panic(err)
		}
		s.partyLocker = common.NewRedisPartyLocker(redisClient, s.configs.Party.HoldTTL)
	default:
		s.partyLocker = common.NewLocalPartyLocker()
	}
}

func (s *srv) newSMTPSender() mailer.Sender {
	cfg := s.configs.SMTP
	return mailer.NewSMTPSender(mailer.SMTPConfigs{
		Addr:     cfg.Address(),
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.Sender,
	})
}

func (s *srv) loadMailCaller() {
	switch s.configs.Notification.Backend {
	case "smtp":
		s.mailCaller = client.NewDirectMailCaller(s.newSMTPSender())
	case "kafka":
		publisher, err := kafka.NewPublisher("api", strings.Split(s.configs.Kafka.Addr, ","))
		if err != nil {
			panic(err)
		}
		s.publisher = publisher
		s.mailCaller = client.NewQueueMailCaller(publisher, s.configs.Notification.Topic)
	default:
		s.mailCaller = client.NewLogMailCaller()
	}
}

func (s *srv) loadDomains() {
	authorizer := common.NewPasscodeVerifier(s.partyRepo, s.configs.Auth.PasscodeCost)
	sealer := crypto.NewSealer(s.configs.Auth.PasscodeSecret)
	matcher := matching.NewRandomMatcher()

	s.partyDomain = domain.NewPartyDomain(
		s.partyRepo,
		s.participantRepo,
		s.assignmentRepo,
		authorizer,
		s.partyLocker,
		matcher,
		sealer,
		s.mailCaller,
	)
	s.participantDomain = domain.NewParticipantDomain(
		s.partyRepo,
		s.participantRepo,
		s.assignmentRepo,
		authorizer,
		s.partyLocker,
		s.mailCaller,
	)
}
