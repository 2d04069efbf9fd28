package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bnema/copytrade-cli/internal/adapters/derivws"
	"github.com/bnema/copytrade-cli/internal/adapters/render/report"
	tomlrepo "github.com/bnema/copytrade-cli/internal/adapters/repo/toml"
	sqlitejournal "github.com/bnema/copytrade-cli/internal/adapters/repo/sqlite"
	chainstore "github.com/bnema/copytrade-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/copytrade-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/copytrade-cli/internal/adapters/secrets/pass"
	"github.com/bnema/copytrade-cli/internal/application"
	"github.com/bnema/copytrade-cli/internal/config"
	"github.com/bnema/copytrade-cli/internal/domain"
	"github.com/bnema/copytrade-cli/internal/logging"
	"github.com/bnema/copytrade-cli/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	settings        config.Settings
	logger          *zap.Logger
	tokens          *application.TokenService
	copiersRenderer func([]domain.Copier, report.RenderOptions) (string, error)
	outcomeRenderer func([]domain.Outcome) (string, error)
	historyRenderer func([]domain.LoginRecord, report.RenderOptions) (string, error)
	now             func() time.Time
}

func wireApp() (*app, error) {
	settings, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(settings.Log.Level, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	repo, err := tomlrepo.NewRepository(settings.Storage.CopiersPath)
	if err != nil {
		return nil, fmt.Errorf("wire copier repository: %w", err)
	}

	secretStore, err := newSecretStore(settings.Secrets, logger)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	return &app{
		settings:        settings,
		logger:          logger,
		tokens:          application.NewTokenService(repo, secretStore, ports.SystemClock{}),
		copiersRenderer: report.Copiers,
		outcomeRenderer: report.Outcomes,
		historyRenderer: report.History,
		now:             time.Now,
	}, nil
}

func newSecretStore(settings config.SecretsSettings, logger *zap.Logger) (ports.SecretStore, error) {
	switch settings.Backend {
	case config.SecretsBackendFile:
		return filestore.NewStore(settings.Dir), nil
	case config.SecretsBackendPass:
		return passstore.NewStore(), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(settings.Dir, logger)
	}
}

func (a *app) openJournal(ctx context.Context) (*sqlitejournal.Journal, error) {
	journal, err := sqlitejournal.Open(ctx, a.settings.Storage.HistoryPath, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open login journal: %w", err)
	}

	return journal, nil
}

// copySession is one connection to the trading API with its controller.
type copySession struct {
	client     *derivws.Client
	controller *application.CopyController
	journal    *sqlitejournal.Journal
	notices    *noticeLog
}

// openSession wires a controller to the login journal and, when connect is
// set, dials the API.
func (a *app) openSession(ctx context.Context, connect bool) (*copySession, error) {
	journal, err := a.openJournal(ctx)
	if err != nil {
		return nil, err
	}

	client, err := derivws.NewClient(
		a.settings.API.Endpoint,
		a.settings.API.AppID,
		derivws.WithPingInterval(a.settings.WS.PingInterval),
		derivws.WithLogger(a.logger.Named("ws")),
	)
	if err != nil {
		_ = journal.Close()
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	controller := application.NewCopyController(client, journal, ports.SystemClock{}, application.CopySettings{
		TraderToken:        a.settings.Trader.Token,
		DemoTraderToken:    a.settings.Trader.DemoToken,
		SimulateDemoToReal: a.settings.Copy.SimulateDemoToReal,
		RecheckDelay:       a.settings.Copy.RecheckDelay,
	}, a.logger.Named("copy"))

	notices := &noticeLog{}
	controller.OnNotice(notices.add)

	if connect {
		if err := client.Connect(ctx, controller); err != nil {
			_ = journal.Close()
			return nil, err
		}
	}

	return &copySession{
		client:     client,
		controller: controller,
		journal:    journal,
		notices:    notices,
	}, nil
}

func (s *copySession) Close() error {
	var closeErr error
	if err := s.client.Close(); err != nil {
		closeErr = errors.Join(closeErr, err)
	}
	if err := s.journal.Close(); err != nil {
		closeErr = errors.Join(closeErr, fmt.Errorf("close login journal: %w", err))
	}

	return closeErr
}
