package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetdash/config"
	"fleetdash/internal/api"
	"fleetdash/internal/apperr"
	"fleetdash/internal/client"
	"fleetdash/internal/db"
	"fleetdash/internal/health"
	"fleetdash/internal/logs"
	"fleetdash/internal/middleware"
	"fleetdash/internal/repo"
	"fleetdash/internal/views"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	ctx    context.Context
	cancel context.CancelFunc
}

// Initialize поднимает логи, БД и маршруты. v — для hot-reload уровня логов
// (может быть nil).
func (a *App) Initialize(cfg *config.Config, v *viper.Viper) error {
	a.cfg = cfg

	// 1) Логи
	logs.Init(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	config.Watch(v, func(next *config.Config) {
		logs.SetLevel(logs.Logger, next.Logging.Level)
		logs.Logger.Infof("config reloaded: log level %s", next.Logging.Level)
	})

	// 2) БД (опционально: без неё работают только views через удалённый API)
	if drv := cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, cfg.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(d); err != nil {
			return err
		}
		a.db = d
	}

	// 3) Роутер + middleware
	a.Router = mux.NewRouter()
	a.Router.NotFoundHandler = apperr.NotFoundHandler()
	a.Router.MethodNotAllowedHandler = apperr.MethodNotAllowedHandler()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	// 4) Health
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db)
	} else {
		health.RegisterRoutes(a.Router)
	}

	// 5) /api/views раньше /api, иначе его перехватит общий префикс
	var recordAPI *api.HTTP
	if a.db != nil {
		recordAPI = api.NewHTTP(repo.New(a.db))
	}
	switch {
	case cfg.Dashboard.APIBaseURL != "":
		c := client.New(cfg.Dashboard.APIBaseURL, nil)
		api.NewViews(c, c.LoadDetail).RegisterRoutes(a.Router)
	case recordAPI != nil:
		api.NewViews(views.NewStoreSource(recordAPI.Stores()), recordAPI.LoadDetail).RegisterRoutes(a.Router)
	default:
		logs.Logger.Warn("no database and no dashboard.api_base_url: /api/views disabled")
	}
	if recordAPI != nil {
		recordAPI.RegisterRoutes(a.Router)
	}

	a.RegisterWebUI("/ui/")

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
	return nil
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var runErr error
	select {
	case <-a.ctx.Done():
	case runErr = <-errc:
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	if a.db != nil {
		_ = db.Close(a.db)
	}
	return runErr
}

// DB — подключение, открытое Initialize (nil без БД).
func (a *App) DB() *gorm.DB { return a.db }

var ErrNotInitialized = errors.New("server not initialized (call Initialize(cfg) first)")
