package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/duong2179/slack-hodor/internal/chat"
	"github.com/duong2179/slack-hodor/internal/civiltime"
	"github.com/duong2179/slack-hodor/internal/command"
	"github.com/duong2179/slack-hodor/internal/config"
	"github.com/duong2179/slack-hodor/internal/logger"
	"github.com/duong2179/slack-hodor/internal/responder"
	"github.com/duong2179/slack-hodor/internal/service"
	"github.com/duong2179/slack-hodor/internal/store"
)

// App wires the room keeper, the Slack transport and the optional journal
// and calendar mirror into a supervised responder.
type App struct {
	config   *config.Config
	features *service.FeatureConfig
	logger   *logger.Logger

	zone       civiltime.Zone
	journal    store.Journal
	dispatcher *command.Dispatcher
	responder  *responder.Responder
}

func New(cfg *config.Config, features *service.FeatureConfig, log *logger.Logger) *App {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	if features == nil {
		features = service.DefaultFeatureConfig()
	}
	return &App{
		config:   cfg,
		features: features,
		logger:   log,
	}
}

// Initialize builds every component. Nothing here talks to Slack; the
// connection is opened by Run.
func (a *App) Initialize(ctx context.Context) error {
	zone, err := civiltime.LoadZone(a.features.Timezone)
	if err != nil {
		return err
	}
	a.zone = zone

	policy := a.features.StorePolicy()
	keeper := store.NewRoomKeeper(policy)
	transport := chat.NewSlackTransport(a.config.BotToken, a.logger)
	guard := service.NewMembershipGuard(transport, a.config.HomeChannel, a.logger)

	a.dispatcher = command.NewDispatcher(keeper, guard, zone, a.config.BotName, a.config.HomeChannel)
	a.dispatcher.Logger = a.logger

	if a.config.JournalPath != "" {
		journal, err := store.NewSQLiteJournal(a.config.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		a.journal = journal
		a.dispatcher.Journal = journal
		a.logger.Info("Journal enabled", logger.Action("startup"), logger.F("PATH", a.config.JournalPath))
	}

	if a.features.Calendar.Enabled {
		mirror, err := service.NewGoogleCalendarMirror(ctx, a.features.Calendar, zone)
		if err != nil {
			return errors.Join(fmt.Errorf("failed to initialize calendar mirror: %w", err), a.Close())
		}
		a.dispatcher.Calendar = mirror
		a.logger.Info("Calendar mirror enabled", logger.Action("startup"), logger.F("CALENDAR_ID", a.features.Calendar.CalendarID))
	}

	a.responder = &responder.Responder{
		Logger:         a.logger,
		Source:         transport,
		Poster:         transport,
		Handler:        a.dispatcher,
		Home:           guard,
		BotID:          a.config.BotID,
		Pace:           responder.DefaultPace,
		ReconnectDelay: responder.DefaultReconnectDelay,
		RetryDelay:     responder.DefaultRetryDelay,
	}

	a.logger.Info("Room keeper ready",
		logger.Action("startup"),
		logger.Status("ready"),
		logger.F("TIMEZONE", zone.Name()),
		logger.F("MIN_LEAD", policy.MinLead),
		logger.F("MAX_LEAD", policy.MaxLead),
		logger.F("MIN_DURATION", policy.MinDuration),
		logger.F("MAX_DURATION", policy.MaxDuration))
	return nil
}

// Run serves commands until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.responder == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.responder.Supervise(ctx)
}

// Close releases the journal, if one was opened.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	if err := a.journal.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	a.journal = nil
	return nil
}
