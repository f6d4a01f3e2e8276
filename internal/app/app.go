package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/checklist-bot/assets"
	"github.com/ykvlv/checklist-bot/internal/config"
	"github.com/ykvlv/checklist-bot/internal/scheduler"
	"github.com/ykvlv/checklist-bot/internal/service"
	"github.com/ykvlv/checklist-bot/internal/store"
	"github.com/ykvlv/checklist-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	loc     *time.Location
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	store   *store.Store
	sched   *scheduler.Scheduler
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.TZName, err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, loc: loc, bot: bot, httpSrv: srv}, nil
}

// openBackend picks the document backend named by STORE_BACKEND.
func (a *App) openBackend(ctx context.Context) (store.Backend, error) {
	switch a.cfg.StoreBackend {
	case "json", "":
		return store.OpenFiles(a.cfg.DataDir)
	case "sqlite":
		return store.OpenSQLite(ctx, a.cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting checklist-bot",
		zap.String("backend", a.cfg.StoreBackend),
		zap.String("tz", a.loc.String()),
		zap.String("http", a.cfg.HTTPAddr),
	)

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	groups, err := assets.DefaultGroups()
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("default groups: %w", err)
	}
	st, err := store.Load(ctx, backend, a.log, store.Defaults{Groups: groups})
	if err != nil {
		_ = backend.Close()
		a.log.Error("load documents failed", zap.Error(err))
		return err
	}
	a.store = st

	msgr := telegram.NewMessenger(a.bot, a.log)
	disp := service.NewDispatcher(st, msgr, a.log)
	a.sched = scheduler.New(a.log, a.loc, a.cfg.SchedulerTick, disp.Dispatch)
	svc := service.New(st, a.sched, a.log, a.cfg.SelfTestDelay)

	if _, err := svc.BootstrapAdmin(ctx, a.cfg.InitialAdminID); err != nil {
		a.log.Warn("initial admin not added", zap.String("id", a.cfg.InitialAdminID), zap.Error(err))
	}
	svc.RegisterAll()

	a.router = telegram.NewRouter(msgr, svc)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.sched.Run(ctx)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if err := a.store.Close(); err != nil {
				a.log.Warn("store close error", zap.Error(err))
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
