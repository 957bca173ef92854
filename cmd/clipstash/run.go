package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"github.com/thek4n/clipstash/internal/application/service"
	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/event"
	"github.com/thek4n/clipstash/internal/domain/logger"
	"github.com/thek4n/clipstash/internal/infrastructure/eventhandler"
	"github.com/thek4n/clipstash/internal/infrastructure/hasher"
	infralogger "github.com/thek4n/clipstash/internal/infrastructure/logger"
	infrarepository "github.com/thek4n/clipstash/internal/infrastructure/repository"
	"github.com/thek4n/clipstash/internal/infrastructure/shortcode"
	"github.com/thek4n/clipstash/internal/presentation/webhandlers"
)

const shutdownTimeout = 10 * time.Second

type runOptions struct {
	Port              int           `short:"p" long:"port" env:"CLIPSTASH_PORT" default:"80" description:"Port to listen"`
	Host              string        `long:"host" env:"CLIPSTASH_HOST" default:"localhost" description:"Host to listen"`
	EnableHealthcheck bool          `long:"health" env:"CLIPSTASH_HEALTH" description:"Enable health handler on /health/ URL"`
	EnableMetrics     bool          `long:"metrics" env:"CLIPSTASH_METRICS" description:"Enable prometheus handler on /metrics/ URL"`
	ShowVersion       bool          `short:"v" long:"version" description:"Show version and exit"`
	SweepPeriod       time.Duration `long:"sweep-period" env:"CLIPSTASH_SWEEP_PERIOD" default:"1m" description:"Period between expired clips removal"`
	APIKeyCacheTTL    time.Duration `long:"apikey-cache-ttl" env:"CLIPSTASH_APIKEY_CACHE_TTL" default:"30s" description:"How long validated apikey is trusted without asking storage"`
	Events            string        `long:"events" env:"CLIPSTASH_EVENTS" default:"none" choice:"none" choice:"amqp" description:"Where to publish domain events"`

	Log    logOptions    `group:"Logging Options"`
	Store  storeOptions  `group:"Storage Options"`
	Clip   clipOptions   `group:"Clip Options"`
	Broker brokerOptions `group:"Broker Options"`
}

type logOptions struct {
	Logger   string `long:"logger" env:"CLIPSTASH_LOGGER" default:"plain" choice:"plain" choice:"json" choice:"zerolog" choice:"zerolog-json" description:"Choose type logger"`
	LogLevel string `long:"loglevel" env:"CLIPSTASH_LOGLEVEL" default:"INFO" choice:"DEBUG" choice:"debug" choice:"INFO" choice:"info" choice:"WARN" choice:"warn" choice:"ERROR" choice:"error" choice:"TRACE" choice:"trace" description:"Logger level"`
}

type brokerOptions struct {
	BrokerHost     string `long:"brokerhost" env:"BROKER_HOST" default:"localhost" description:"AMQP broker host"`
	BrokerPort     int    `long:"brokerport" env:"BROKER_PORT" default:"5672" description:"AMQP broker port"`
	BrokerUser     string `long:"brokeruser" env:"BROKER_USER" default:"guest" description:"AMQP broker user"`
	BrokerPassword string `long:"brokerpassword" env:"BROKER_PASSWORD" default:"guest" description:"AMQP broker password"`
}

type digConfig struct {
	dig.In

	Options     *runOptions
	Logger      *slog.Logger
	Server      *http.Server
	ClipService *service.ClipService
	Store       *store
	Publisher   *event.Publisher
	Broker      *brokerConnection
}

func runServer(args []string) error {
	opts, err := parseRunOptions(args)
	if err != nil {
		return err
	}
	if opts.ShowVersion {
		fmt.Println(version)
		return nil
	}

	container, err := buildContainer(opts)
	if err != nil {
		return err
	}

	return container.Invoke(run)
}

func parseRunOptions(args []string) (*runOptions, error) {
	var opts runOptions

	if _, err := flags.NewParser(&opts, flags.Default).ParseArgs(args); err != nil {
		return nil, fmt.Errorf("parse params error: %w", err)
	}

	return &opts, nil
}

func buildContainer(opts *runOptions) (*dig.Container, error) {
	container := dig.New()

	constructors := []any{
		func() *runOptions { return opts },

		// logger components
		provideLoggerHandler,
		provideLogger,
		provideDomainLogger,

		// storage
		provideStorageConfig,
		provideStore,
		provideAPIKeyRepository,

		// events
		provideRegistry,
		provideBroker,
		provideEventPublisher,

		// services
		provideClipConfig,
		provideAPIKeysService,
		provideClipService,

		// transport
		provideHandlers,
		provideServer,
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, fmt.Errorf("DI error: %w", err)
		}
	}

	return container, nil
}

func provideLoggerHandler(opts *runOptions) (slog.Handler, error) {
	level, err := infralogger.ParseLevel(opts.Log.LogLevel)
	if err != nil {
		return nil, err
	}

	format := "plain"
	if opts.Log.Logger == "json" || opts.Log.Logger == "zerolog-json" {
		format = "json"
	}

	return infralogger.NewSlogHandler(format, level, os.Stdout)
}

func provideLogger(handler slog.Handler) *slog.Logger {
	return slog.New(handler)
}

// provideDomainLogger returns logger for services.
// Zerolog is used for services only, http layer keeps slog.
func provideDomainLogger(opts *runOptions, slg *slog.Logger) (logger.Logger, error) {
	level, err := infralogger.ParseLevel(opts.Log.LogLevel)
	if err != nil {
		return nil, err
	}

	switch opts.Log.Logger {
	case "zerolog":
		return infralogger.NewZerologLogger(os.Stdout, level), nil
	case "zerolog-json":
		return infralogger.NewZerologJSONLogger(os.Stdout, level), nil
	default:
		return infralogger.NewSlogLogger(slg), nil
	}
}

func provideStorageConfig(opts *runOptions) config.StorageConfig {
	return runStorageConfig{apikeyCacheTTL: opts.APIKeyCacheTTL}
}

func provideStore(opts *runOptions, storageConfig config.StorageConfig, logger *slog.Logger) (*store, error) {
	logger.Debug("Opening storage...", "storage", opts.Store.Storage)

	s, err := openStore(opts.Store, storageConfig)
	if err != nil {
		return nil, err
	}

	logger.Debug("Successfully opened storage", "storage", opts.Store.Storage)
	return s, nil
}

func provideAPIKeyRepository(
	s *store,
	storageConfig config.StorageConfig,
) (*infrarepository.CachedAPIKeyRepository, error) {
	return infrarepository.NewCachedAPIKeyRepository(
		s.apikeys,
		storageConfig.APIKeyCacheSize(),
		storageConfig.APIKeyCacheTTL(),
	)
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideEventPublisher(
	reg *prometheus.Registry,
	broker *brokerConnection,
	lgr logger.Logger,
) *event.Publisher {
	eventPublisher := event.NewPublisher()
	eventPublisher.Subscribe(eventhandler.NewMetricsEventHandler(reg), eventhandler.SubscribedEvents()...)

	if broker.channel != nil {
		rbmq := eventhandler.NewRabbitMQEventHandler(broker.channel, lgr)
		eventPublisher.Subscribe(rbmq, eventhandler.SubscribedEvents()...)
	}

	return eventPublisher
}

func provideClipConfig(opts *runOptions) config.ClipValidationConfig {
	return clipConfig{opts: opts.Clip}
}

func provideAPIKeysService(
	apikeyRepository *infrarepository.CachedAPIKeyRepository,
	eventPublisher *event.Publisher,
	cfg config.ClipValidationConfig,
	lgr logger.Logger,
) *service.APIKeysService {
	return service.NewAPIKeysService(apikeyRepository, eventPublisher, cfg, lgr)
}

func provideClipService(
	s *store,
	apikeysService *service.APIKeysService,
	eventPublisher *event.Publisher,
	cfg config.ClipValidationConfig,
	lgr logger.Logger,
) (*service.ClipService, error) {
	generator, err := shortcode.NewRandomGenerator(cfg.ShortCodeLength(), cfg.ShortCodeCharset())
	if err != nil {
		return nil, fmt.Errorf("fail to create shortcode generator: %w", err)
	}

	return service.NewClipService(
		s.clips,
		apikeysService,
		hasher.NewDefaultArgon2Hasher(),
		generator,
		eventPublisher,
		cfg,
		lgr,
	), nil
}

func provideHandlers(
	logger *slog.Logger,
	clipService *service.ClipService,
	s *store,
	storageConfig config.StorageConfig,
) *webhandlers.Handlers {
	return webhandlers.NewHandlers(
		version,
		logger,
		clipService,
		s,
		storageConfig.MaxContentSize(),
	)
}

func provideServer(
	opts *runOptions,
	handlers *webhandlers.Handlers,
	reg *prometheus.Registry,
) *http.Server {
	mux := http.NewServeMux()
	handlers.Register(mux, opts.EnableHealthcheck)

	if opts.EnableMetrics {
		mux.Handle("GET /metrics/{$}", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	hostport := fmt.Sprintf("%s:%d", opts.Host, opts.Port)

	return &http.Server{
		Addr:              hostport,
		ReadHeaderTimeout: 3 * time.Second,
		Handler:           mux,
	}
}

func run(config digConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if err := config.Store.Close(); err != nil {
			config.Logger.Error("Fail to close storage", "error", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		config.Logger.Info(
			"Server started",
			"host", config.Options.Host,
			"port", config.Options.Port,
		)

		err := config.Server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		config.Logger.Info("Shutting down server")
		return config.Server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepLoop(ctx, config.ClipService, sweepConfig{period: config.Options.SweepPeriod}, config.Logger)
		return nil
	})

	err := g.Wait()
	drain(config.Publisher, config.Broker, config.Logger)

	return err
}

// drain waits for pending event deliveries and closes broker connection.
func drain(publisher *event.Publisher, broker *brokerConnection, logger *slog.Logger) {
	publisher.Wait()

	if err := broker.Close(); err != nil {
		logger.Error("Fail to close amqp broker connection", "error", err)
	}
}

// sweepLoop removes expired clips every period until ctx is done.
func sweepLoop(ctx context.Context, clips *service.ClipService, cfg config.SweepConfig, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.SweepPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := clips.SweepExpired(now)
			if err != nil {
				logger.Error("Fail to sweep expired clips", "error", err)
				continue
			}
			logger.Log(ctx, infralogger.LevelTrace, "Sweep finished", "removed", removed)
		}
	}
}

// brokerConnection is amqp connection with its channel.
// Both are nil when events are not published to broker.
type brokerConnection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Close closes channel and connection.
func (b *brokerConnection) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}

	chErr := b.channel.Close()
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("fail to close amqp connection: %w", err)
	}
	if chErr != nil {
		return fmt.Errorf("fail to close amqp channel: %w", chErr)
	}
	return nil
}

func provideBroker(opts *runOptions, logger *slog.Logger) (*brokerConnection, error) {
	if opts.Events != "amqp" {
		return &brokerConnection{}, nil
	}

	brokerOpts := opts.Broker
	brokerConnectionURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%d/",
		brokerOpts.BrokerUser,
		brokerOpts.BrokerPassword,
		brokerOpts.BrokerHost,
		brokerOpts.BrokerPort,
	)

	loggerb := logger.With(
		"broker_host", brokerOpts.BrokerHost,
		"broker_port", brokerOpts.BrokerPort,
		"broker_user", brokerOpts.BrokerUser,
	)
	loggerb.Debug("Initializing amqp broker channel...")

	broker, err := initBrokerChannel(brokerConnectionURL, loggerb)
	if err != nil {
		loggerb.Error("Failed to initialize amqp broker channel", "error", err)
		return nil, err
	}

	loggerb.Debug("Successfully initialized amqp broker channel")
	return broker, nil
}

func initBrokerChannel(connectURL string, logger *slog.Logger) (*brokerConnection, error) {
	logger.Debug("Creating amqp connection...")
	rabbitmqcon, err := amqp.Dial(connectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	logger.Debug("Successfully created amqp connection")

	logger.Debug("Creating amqp channel...")
	ch, err := rabbitmqcon.Channel()
	if err != nil {
		_ = rabbitmqcon.Close()
		return nil, fmt.Errorf("failed to create a rabbitmq channel: %w", err)
	}
	logger.Debug("Successfully created amqp channel")

	broker := &brokerConnection{conn: rabbitmqcon, channel: ch}

	logger.Debug("Declaring amqp exchange...", "exchange_type", "topic", "exchange_name", eventhandler.ExchangeName)
	err = ch.ExchangeDeclare(
		eventhandler.ExchangeName,
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		_ = broker.Close()
		return nil, fmt.Errorf("failed to create a rabbitmq exchange '%s': %w", eventhandler.ExchangeName, err)
	}
	logger.Debug("Successfully declared amqp exchange...")

	return broker, nil
}
