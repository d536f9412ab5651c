package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/controllers"
	"github.com/yigit/campusportal/internal/app/layout"
	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/app/routes"
	"github.com/yigit/campusportal/internal/app/services"
	"github.com/yigit/campusportal/internal/app/session"
	"github.com/yigit/campusportal/internal/config"
	"github.com/yigit/campusportal/internal/middleware"
	"github.com/yigit/campusportal/internal/mockapi"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
	"github.com/yigit/campusportal/internal/pkg/auth"
	"github.com/yigit/campusportal/internal/pkg/filestorage"
	"github.com/yigit/campusportal/internal/pkg/httpclient"
	"github.com/yigit/campusportal/internal/pkg/logger"
	"github.com/yigit/campusportal/internal/pkg/notify"
	"github.com/yigit/campusportal/internal/pkg/querycache"
	"github.com/yigit/campusportal/internal/pkg/realtime"
)

// Paths read at startup. CONFIG_PATH and ENV_FILE override them.
var (
	defaultConfigPath = filepath.Join("configs", "config.yaml")
	defaultEnvPath    = ".env"
)

// Validator checks a loaded configuration for one binary
type Validator func(*config.Config) error

// LoadConfigAndSetupLogger loads configuration, validates it and configures
// the logger. Any error here should abort startup.
func LoadConfigAndSetupLogger(validate Validator) (*config.Config, zerolog.Logger, error) {
	configPath := envOr("CONFIG_PATH", defaultConfigPath)
	envPath := envOr("ENV_FILE", defaultEnvPath)

	cfg, err := config.LoadConfig(configPath, envPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}
	if err := validate(cfg); err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Default()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Portal holds the portal's long-lived components
type Portal struct {
	Table      *navigation.Table
	Store      *session.Store
	Tray       *notify.Tray
	Cache      *querycache.Cache
	Normalizer *apperrors.Normalizer
	Hub        *realtime.Hub

	AuthService  services.AuthService
	UserService  services.UserService
	MediaService services.MediaService

	Controllers routes.Controllers
	Logger      zerolog.Logger
}

func newStorage(cfg *config.Config) (session.Storage, error) {
	if strings.EqualFold(cfg.Session.Driver, "memory") {
		return session.NewMemoryStorage(), nil
	}
	return session.NewFileStorage(cfg.Session.StoragePath)
}

// BuildPortal wires the portal and restores any persisted session
func BuildPortal(cfg *config.Config, lgr zerolog.Logger) (*Portal, error) {
	p := &Portal{
		Table:  navigation.DefaultTable(),
		Logger: lgr,
	}

	storage, err := newStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Str("path", cfg.Session.StoragePath).Msg("Failed to open session storage")
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	p.Store = session.NewStore(storage, logger.Component("session"))
	restored := p.Store.LoadFromPersistedStorage()
	lgr.Info().Bool("authenticated", restored.IsAuthenticated).Str("role", restored.Role.String()).Msg("Session restored")

	p.Tray = notify.NewTray(cfg.NotificationTTL(), logger.Component("notify"))

	p.Hub = realtime.NewHub(logger.Component("realtime"))
	go p.Hub.Run()
	p.Store.Subscribe(func(s models.Session) {
		p.Hub.Publish(realtime.NewEvent(realtime.EventSession, s))
	})
	p.Tray.OnPush(func(n notify.Notification) {
		p.Hub.Publish(realtime.NewEvent(realtime.EventNotification, n))
	})

	p.Normalizer = apperrors.NewNormalizer(p.Tray, logger.Component("errors"))
	p.Cache = querycache.New(cfg.QueryTTL(), logger.Component("querycache"))

	clientLogger := logger.Component("httpclient")
	api, err := httpclient.New(cfg.API.BaseURL, p.Store,
		httpclient.WithTimeout(cfg.APITimeout()),
		httpclient.WithLogger(clientLogger),
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	mediaClient, err := httpclient.New(cfg.Integrations.MediaBaseURL, p.Store,
		httpclient.WithTimeout(cfg.APITimeout()),
		httpclient.WithLogger(clientLogger),
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create media client: %w", err)
	}

	p.AuthService = services.NewAuthService(api, p.Store, p.Cache, p.Normalizer, logger.Component("auth"))
	p.UserService = services.NewUserService(api, p.Cache, p.Normalizer, logger.Component("users"))
	p.MediaService = services.NewMediaService(mediaClient, cfg.Integrations.ImageBaseURL, p.Normalizer, logger.Component("media"))

	renderer := controllers.NewRenderer(
		p.Store,
		layout.NewSelector(p.Table),
		p.Table,
		p.AuthService,
		p.Normalizer,
		dto.ClientConfig{
			ImageBaseURL:   cfg.Integrations.ImageBaseURL,
			RealtimeAppKey: cfg.Integrations.RealtimeAppKey,
			AnalyticsID:    cfg.Integrations.AnalyticsID,
		},
		logger.Component("pages"),
	)

	p.Controllers = routes.Controllers{
		Auth:          controllers.NewAuthController(p.AuthService, renderer, p.Table, logger.Component("auth")),
		Pages:         controllers.NewPagesController(p.UserService, renderer, p.Table, p.Store, logger.Component("pages")),
		Accounts:      controllers.NewAccountsController(p.UserService, renderer, p.Store, logger.Component("accounts")),
		Media:         controllers.NewMediaController(p.MediaService, p.AuthService, p.Normalizer, p.Table, logger.Component("media")),
		Notifications: controllers.NewNotificationsController(p.Tray, p.Hub, p.Store, logger.Component("realtime")),
	}

	return p, nil
}

// Close stops background work started by BuildPortal
func (p *Portal) Close() {
	if p.Hub != nil {
		p.Hub.Close()
	}
}

func newEngine(cfg *config.Config, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(lgr))
	return router
}

// SetupPortalRouter configures the Gin engine with middleware and routes
func SetupPortalRouter(cfg *config.Config, p *Portal) (*gin.Engine, error) {
	router := newEngine(cfg, p.Logger)
	if err := routes.SetupRouter(router, p.Table, p.Store, p.Controllers); err != nil {
		return nil, fmt.Errorf("failed to set up routes: %w", err)
	}
	return router, nil
}

// BuildMockAPI wires the stand-in backend
func BuildMockAPI(cfg *config.Config, lgr zerolog.Logger) (*gin.Engine, error) {
	media, err := filestorage.NewLocalStorage(cfg.MockAPI.StoragePath, logger.Component("filestorage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenTTL(),
		RefreshTokenExp: cfg.RefreshTokenTTL(),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	handler := mockapi.NewHandler(mockapi.DefaultDirectory(), jwtService, media, logger.Component("mockapi"))
	limiter := middleware.NewRateLimiter(cfg.MockAPI.LoginRPS, cfg.MockAPI.LoginBurst, logger.Component("ratelimit"))

	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return mockapi.NewRouter(handler, middleware.NewAuthMiddleware(jwtService), limiter, lgr), nil
}
