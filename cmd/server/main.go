package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/courierdesk/courierdesk/migrations"
	"github.com/courierdesk/courierdesk/modules"
	"github.com/courierdesk/courierdesk/pkg/application"
	"github.com/courierdesk/courierdesk/pkg/configuration"
	"github.com/courierdesk/courierdesk/pkg/eventbus"
	"github.com/courierdesk/courierdesk/pkg/middleware"
)

// publicController marks controllers whose routes skip authentication.
type publicController interface {
	Public() bool
}

func main() {
	conf := configuration.Use()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, conf *configuration.Configuration, logger *logrus.Logger) error {
	if conf.MigrateOnStart {
		if err := runMigrations(conf); err != nil {
			return gerrors.Wrap(err, "migrations failed")
		}
		logger.Info("migrations applied")
	}

	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return gerrors.Wrap(err, "failed to create connection pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return gerrors.Wrap(err, "database is unreachable")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	for _, module := range modules.BuiltInModules() {
		if err := module.Register(app); err != nil {
			return gerrors.Wrapf(err, "failed to register module %s", module.Name())
		}
		logger.WithField("module", module.Name()).Debug("module registered")
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.WithPool(pool))
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(conf.Uploads.Dir))),
	)

	public := router.NewRoute().Subrouter()
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.Authorize(conf.Auth.JWTSecret))
	for _, ctrl := range app.Controllers() {
		if pc, ok := ctrl.(publicController); ok && pc.Public() {
			ctrl.Register(public)
		} else {
			ctrl.Register(protected)
		}
		logger.WithField("prefix", ctrl.Key()).Debug("controller registered")
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{conf.Origin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         conf.Address,
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", conf.Address).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

func runMigrations(conf *configuration.Configuration) error {
	db, err := sql.Open("pgx", conf.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
