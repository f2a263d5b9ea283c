package commands

import (
	"context"
	"database/sql"
	"fmt"

	"draw_notification_bot/internal/app"
	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/domain/notification"
	"draw_notification_bot/internal/infra/config"
	idb "draw_notification_bot/internal/infra/database"
	"draw_notification_bot/internal/infra/logger"
	"draw_notification_bot/internal/infra/mail"
	"draw_notification_bot/internal/infra/source"
	"draw_notification_bot/internal/infra/state"
	"draw_notification_bot/internal/infra/telegram"
)

// buildSources returns the live feed followed by the configured fallbacks.
func buildSources(c *config.AppConfig) []draw.Source {
	mirror := ""
	if c.Source.MirrorFallback {
		mirror = c.Source.FallbackFile
	}

	sources := []draw.Source{
		source.NewHTTPJSONSource(c.Source.URL, c.Source.FetchTimeout, mirror, logger.Component("source")),
	}
	if c.Source.FallbackFile != "" {
		sources = append(sources, source.NewFileJSONSource(c.Source.FallbackFile))
	}
	if c.Source.FallbackCSV != "" {
		sources = append(sources, source.NewCSVFileSource(c.Source.FallbackCSV))
	}
	return sources
}

// buildStateStore opens the configured marker store. The returned close func is never nil.
func buildStateStore(ctx context.Context, c *config.AppConfig) (notification.StateStore, func() error, error) {
	noop := func() error { return nil }

	switch c.State.Backend {
	case config.StateBackendFile:
		return state.NewFileStore(c.State.File), noop, nil

	case config.StateBackendSQLite, config.StateBackendPostgres:
		db, err := openStateDB(c)
		if err != nil {
			return nil, noop, err
		}
		repo := idb.NewSQLStateRepository(db, c.State.Key)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return repo, db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported state backend %q", c.State.Backend)
	}
}

func openStateDB(c *config.AppConfig) (*sql.DB, error) {
	if c.State.Backend == config.StateBackendPostgres {
		return idb.NewPostgresConnection(c.State.DatabaseURL)
	}
	return idb.NewSQLiteConnection(c.State.SQLitePath)
}

func buildTransport(c *config.AppConfig) (notification.Transport, error) {
	if err := c.ValidateTransport(); err != nil {
		return nil, err
	}

	switch c.Transport {
	case config.TransportSMTP:
		return mail.NewSMTPTransport(mail.Config{
			Host:        c.SMTP.Host,
			Port:        c.SMTP.Port,
			Username:    c.SMTP.Username,
			Password:    c.SMTP.Password,
			From:        c.SMTP.From,
			ImplicitTLS: c.SMTP.ImplicitTLS,
		}), nil

	case config.TransportTelegram:
		bot, err := telegram.NewSendOnlyBot(c.Telegram.Token, c.DispatchTimeout)
		if err != nil {
			return nil, err
		}
		return telegram.NewTransport(telegram.NewTelebotAdapter(bot)), nil

	default:
		return nil, fmt.Errorf("unsupported transport %q", c.Transport)
	}
}

// notifierDeps are the long-lived collaborators shared by every run of a process.
type notifierDeps struct {
	sources   []draw.Source
	store     notification.StateStore
	transport notification.Transport
	close     func() error
}

func buildDeps(ctx context.Context, c *config.AppConfig) (*notifierDeps, error) {
	transport, err := buildTransport(c)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := buildStateStore(ctx, c)
	if err != nil {
		return nil, err
	}
	return &notifierDeps{
		sources:   buildSources(c),
		store:     store,
		transport: transport,
		close:     closeStore,
	}, nil
}

// newNotifier builds a fresh notifier instance over the shared collaborators.
func (d *notifierDeps) newNotifier(c *config.AppConfig) *app.DrawUpdateNotifier {
	return app.NewDrawUpdateNotifier(
		d.sources,
		d.store,
		d.transport,
		logger.Component("notifier").WithField("transport", d.transport.Name()),
		app.Options{
			Recipient:       c.Recipient(),
			DispatchTimeout: c.DispatchTimeout,
		},
	)
}
