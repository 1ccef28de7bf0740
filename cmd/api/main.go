package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-catalog-cart/internal/activity"
	"github.com/example/ec-catalog-cart/internal/api"
	"github.com/example/ec-catalog-cart/internal/command"
	"github.com/example/ec-catalog-cart/internal/config"
	"github.com/example/ec-catalog-cart/internal/domain/cart"
	"github.com/example/ec-catalog-cart/internal/domain/category"
	"github.com/example/ec-catalog-cart/internal/domain/product"
	"github.com/example/ec-catalog-cart/internal/infrastructure/kafka"
	"github.com/example/ec-catalog-cart/internal/infrastructure/store"
	"github.com/example/ec-catalog-cart/internal/logging"
	"github.com/example/ec-catalog-cart/internal/metrics"
	"github.com/example/ec-catalog-cart/internal/query"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:     "catalog-api",
		Usage:    "product catalog and shopping cart service",
		Metadata: map[string]interface{}{},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			c.App.Metadata["config"] = cfg
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "migrate", Usage: "apply migrations before serving"}},
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back the schema",
				Subcommands: []*cli.Command{
					{Name: store.MigrateUp, Usage: "apply all migrations", Action: migrateAction(store.MigrateUp)},
					{Name: store.MigrateDown, Usage: "roll back all migrations", Action: migrateAction(store.MigrateDown)},
				},
			},
			{
				Name:   "seed",
				Usage:  "insert the sample categories and products",
				Action: seed,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("catalog-api failed")
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

func connect(cfg *config.Config) (*sqlx.DB, error) {
	return store.Connect(cfg.DBDriver, cfg.DatabaseURL, store.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
}

func serve(c *cli.Context) error {
	cfg := configFrom(c)
	logger := log.WithField("component", "api")

	if c.Bool("migrate") {
		if err := store.Migrate(cfg.DBDriver, cfg.DatabaseURL, store.MigrateUp); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.WithField("driver", cfg.DBDriver).Info("connected to database")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var sink activity.Sink
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		sink = producer
		logger.WithFields(log.Fields{"brokers": cfg.KafkaBrokers, "topic": cfg.KafkaTopic}).Info("publishing activity events")
	} else {
		logger.Info("KAFKA_BROKERS not set, activity events are discarded")
	}
	publisher := activity.NewPublisher(sink, m.PublishFailures)

	productSvc := product.NewService(store.NewSQLProductStore(db))
	cartSvc := cart.NewService(store.NewSQLCartStore(db), productSvc)
	categorySvc := category.NewService(store.NewSQLCategoryStore(db))

	cmdHandler := command.NewHandler(productSvc, cartSvc, publisher, m, cfg.LowStockThreshold)
	queryHandler := query.NewHandler(productSvc, cartSvc, categorySvc, m)

	router := api.NewRouter(api.NewHandlers(cmdHandler, queryHandler, cfg.Environment), api.RouterOptions{
		Metrics:        m,
		Gatherer:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(log.Fields{"port": cfg.Port, "environment": cfg.Environment}).Info("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func migrateAction(direction string) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := configFrom(c)
		if err := store.Migrate(cfg.DBDriver, cfg.DatabaseURL, direction); err != nil {
			return err
		}
		log.WithFields(log.Fields{"driver": cfg.DBDriver, "direction": direction}).Info("migration complete")
		return nil
	}
}

func seed(c *cli.Context) error {
	cfg := configFrom(c)
	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := store.Seed(c.Context, store.NewSQLCategoryStore(db), store.NewSQLProductStore(db))
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"categories": result.Categories,
		"products":   result.Products,
	}).Info("sample data inserted")
	return nil
}
