// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	adapterProvider "github.com/jbctechsolutions/parley/internal/adapters/provider"
	"github.com/jbctechsolutions/parley/internal/adapters/provider/anthropic"
	"github.com/jbctechsolutions/parley/internal/adapters/provider/gemini"
	"github.com/jbctechsolutions/parley/internal/adapters/provider/openai"
	appChat "github.com/jbctechsolutions/parley/internal/application/chat"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	appPrompt "github.com/jbctechsolutions/parley/internal/application/prompt"
	appSession "github.com/jbctechsolutions/parley/internal/application/session"
	"github.com/jbctechsolutions/parley/internal/domain/provider"
	domainSession "github.com/jbctechsolutions/parley/internal/domain/session"
	"github.com/jbctechsolutions/parley/internal/infrastructure/config"
	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
	"github.com/jbctechsolutions/parley/internal/infrastructure/storage"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	// Configuration, guarded against hot reload
	configMu sync.RWMutex
	config   *config.Config
	verbose  bool // Override log level to debug when true

	// Database connection
	dbConn *storage.Connection
	db     *sql.DB

	// Repositories
	promptRepo       ports.PromptStore
	settingsRepo     ports.SettingsStore
	conversationRepo ports.ConversationStore

	// Provider dispatch
	transport        *adapterProvider.Transport
	providerRegistry *adapterProvider.Registry

	// Application services
	sessionManager *appSession.Manager
	promptService  *appPrompt.Service
	chatService    *appChat.Service

	// Domain services
	estimator      *tokenizer.Estimator
	pricingTable   *provider.PricingTable
	costCalculator *provider.CostCalculator

	// Observability
	logger *logging.Logger
	tracer *tracing.Tracer

	// Config hot reload notice
	configWatcher *config.Watcher
}

// Options controls container construction.
type Options struct {
	Verbose bool
	DBPath  string // empty means the default ~/.parley/parley.db
}

// NewContainer creates a new dependency injection container with all services
// initialized based on the provided configuration.
func NewContainer(cfg *config.Config, opts Options) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: opts.Verbose,
	}

	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if err := c.initDatabase(opts.DBPath); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.initRepositories()
	c.initProviders()

	if err := c.initServices(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return c, nil
}

// initObservability initializes the logger and tracer.
func (c *Container) initObservability() error {
	logLevel := logging.Level(c.config.Logging.Level)
	if c.verbose {
		logLevel = logging.LevelDebug
	}

	logFormat := logging.FormatText
	if c.config.Logging.Format == "json" {
		logFormat = logging.FormatJSON
	}

	c.logger = logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
	})

	if c.config.Tracing.Enabled {
		tracer, err := tracing.New(context.Background(), tracing.Config{
			Enabled:      true,
			ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
			OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
			ServiceName:  c.config.Tracing.ServiceName,
			Environment:  "production",
			SampleRate:   c.config.Tracing.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("failed to create tracer: %w", err)
		}
		c.tracer = tracer
	} else {
		c.tracer = tracing.Default()
	}

	return nil
}

// initDatabase initializes the SQLite database connection.
func (c *Container) initDatabase(dbPath string) error {
	if dbPath == "" {
		dbPath = c.config.Storage.Path
	}

	conn, err := storage.NewConnection(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := conn.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	c.dbConn = conn
	c.db = conn.DB()
	return nil
}

// initRepositories initializes all storage repositories.
func (c *Container) initRepositories() {
	c.promptRepo = storage.NewPromptRepository(c.db)
	c.settingsRepo = storage.NewSettingsRepository(c.db)
	c.conversationRepo = storage.NewConversationRepository(c.db)
}

// initProviders builds the shared transport and registers the adapters.
func (c *Container) initProviders() {
	c.estimator = tokenizer.NewEstimator()
	c.transport = adapterProvider.NewTransport()

	c.providerRegistry = adapterProvider.NewRegistry()
	for _, a := range []ports.AdapterPort{
		openai.NewAdapter(c.transport, c.estimator),
		gemini.NewAdapter(c.transport, c.estimator),
		anthropic.NewAdapter(c.transport, c.estimator),
		openai.NewCustomAdapter(c.transport, c.estimator),
	} {
		// Registration only fails for invalid identities; these are fixed.
		if err := c.providerRegistry.Register(a); err != nil {
			c.logger.Error("failed to register provider adapter",
				"identity", a.Identity(), "error", err)
		}
	}
}

// initServices initializes application services.
func (c *Container) initServices() error {
	c.pricingTable = provider.NewDefaultPricingTable()
	c.costCalculator = provider.NewCostCalculator(c.pricingTable)

	if err := c.seedSettingsFromConfig(c.config); err != nil {
		return err
	}

	sessionManager, err := appSession.NewManagerWithLogger(c.settingsRepo, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	c.sessionManager = sessionManager

	c.promptService = appPrompt.NewService(c.promptRepo, c.estimator)
	if err := c.promptService.EnsureSystemPrompt(); err != nil {
		return fmt.Errorf("failed to seed system prompt: %w", err)
	}

	c.chatService = appChat.NewService(
		c.providerRegistry,
		c.sessionManager,
		c.promptService,
		c.estimator,
		c.costCalculator,
		c.logger,
		c.tracer,
	)

	return nil
}

// seedSettingsFromConfig copies provider credentials from the YAML config
// into the settings store for providers that have never been configured
// interactively. Stored settings always win over config defaults.
func (c *Container) seedSettingsFromConfig(cfg *config.Config) error {
	configured := map[provider.Identity]config.ProviderConfig{
		provider.IdentityOpenAI:    cfg.Providers.OpenAI,
		provider.IdentityGemini:    cfg.Providers.Gemini,
		provider.IdentityAnthropic: cfg.Providers.Anthropic,
		provider.IdentityCustom:    cfg.Providers.Custom,
	}

	for id, pc := range configured {
		if pc.APIKey == "" && pc.Model == "" && pc.BaseURL == "" {
			continue
		}

		stored, err := c.settingsRepo.Get(id)
		if err != nil {
			return fmt.Errorf("failed to check settings for %s: %w", id, err)
		}
		if stored != nil {
			continue
		}

		settings := domainSession.DefaultSettings(id)
		settings.Credential = pc.APIKey
		if pc.Model != "" {
			settings.Model = pc.Model
		}
		if pc.BaseURL != "" {
			settings.BaseURL = pc.BaseURL
		}

		if err := c.settingsRepo.Save(settings); err != nil {
			return fmt.Errorf("failed to seed settings for %s: %w", id, err)
		}
	}

	return nil
}

// reloadConfig re-reads the config file through the loader and applies it:
// the container's config is swapped and provider defaults are re-seeded for
// providers without stored settings. An invalid file leaves the running
// config untouched.
func (c *Container) reloadConfig(loader *config.Loader) error {
	cfg, err := loader.Load("")
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config after reload: %w", err)
	}

	if err := c.seedSettingsFromConfig(cfg); err != nil {
		return err
	}

	c.configMu.Lock()
	c.config = cfg
	c.configMu.Unlock()
	return nil
}

// StartConfigWatching watches the config directory and re-applies
// config.yaml when it changes on disk.
func (c *Container) StartConfigWatching(ctx context.Context) error {
	loader, err := config.NewLoader("")
	if err != nil {
		return fmt.Errorf("failed to create config loader: %w", err)
	}

	watcher, err := config.NewWatcher(config.DefaultWatcherConfig())
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	c.configWatcher = watcher

	if err := watcher.Watch(ctx, loader.ConfigDir()); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}
				if err := c.reloadConfig(loader); err != nil {
					c.logger.Warn("configuration change not applied",
						"path", event.Path, "error", err)
					continue
				}
				c.logger.Info("configuration re-applied",
					"path", event.Path, "event", string(event.Type))
			case err, ok := <-watcher.Errors():
				if !ok {
					return
				}
				c.logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	if c.configWatcher != nil {
		_ = c.configWatcher.Close()
	}

	if c.tracer != nil {
		_ = c.tracer.Shutdown(context.Background())
	}

	if c.dbConn != nil {
		return c.dbConn.Close()
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	c.configMu.RLock()
	defer c.configMu.RUnlock()
	return c.config
}

// DB returns the database connection.
func (c *Container) DB() *sql.DB {
	return c.db
}

// PromptRepository returns the prompt repository.
func (c *Container) PromptRepository() ports.PromptStore {
	return c.promptRepo
}

// SettingsRepository returns the settings repository.
func (c *Container) SettingsRepository() ports.SettingsStore {
	return c.settingsRepo
}

// ConversationRepository returns the conversation repository.
func (c *Container) ConversationRepository() ports.ConversationStore {
	return c.conversationRepo
}

// ProviderRegistry returns the provider registry.
func (c *Container) ProviderRegistry() *adapterProvider.Registry {
	return c.providerRegistry
}

// SessionManager returns the session manager.
func (c *Container) SessionManager() *appSession.Manager {
	return c.sessionManager
}

// PromptService returns the prompt service.
func (c *Container) PromptService() *appPrompt.Service {
	return c.promptService
}

// ChatService returns the conversation service.
func (c *Container) ChatService() *appChat.Service {
	return c.chatService
}

// Estimator returns the token estimator.
func (c *Container) Estimator() *tokenizer.Estimator {
	return c.estimator
}

// PricingTable returns the model pricing table.
func (c *Container) PricingTable() *provider.PricingTable {
	return c.pricingTable
}

// CostCalculator returns the cost calculator for provider pricing.
func (c *Container) CostCalculator() *provider.CostCalculator {
	return c.costCalculator
}

// Logger returns the structured logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the OpenTelemetry tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}
