package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/config"
	"github.com/pankajredekar/shopadmin/internal/database"
	"github.com/pankajredekar/shopadmin/internal/eventengine"
	"github.com/pankajredekar/shopadmin/internal/features/category"
	"github.com/pankajredekar/shopadmin/internal/features/dashboard"
	"github.com/pankajredekar/shopadmin/internal/features/product"
	"github.com/pankajredekar/shopadmin/internal/features/session"
	"github.com/pankajredekar/shopadmin/internal/features/user"
	"github.com/pankajredekar/shopadmin/internal/handlerutils"
	"github.com/pankajredekar/shopadmin/internal/lowstock"
	"github.com/pankajredekar/shopadmin/internal/mailer"
	"github.com/pankajredekar/shopadmin/internal/middlewares"
	"github.com/pankajredekar/shopadmin/internal/ratelimit"
	"github.com/pankajredekar/shopadmin/internal/storage"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type ServerConfig struct {
	App *config.Config
	DB  *gorm.DB

	// Mailer and RegisterLimiter replace the ones built from App when set
	Mailer          mailer.Mailer
	RegisterLimiter ratelimit.Limiter
}

type server struct {
	*ServerConfig

	doneCh        chan struct{}   // signals internal go routines to shutdown
	internalSrvWG *sync.WaitGroup // tracks internal go routines such as the low stock mailer

	eventEngine eventengine.SubscribeRegisterPublisher
	redis       *redis.Client
	tokens      *auth.TokenService
	images      *storage.LocalStore
	notifier    *lowstock.Notifier
	stopOnce    sync.Once
	srv         *http.Server
}

func NewServer(serverConfig *ServerConfig) (*server, error) {
	if serverConfig == nil || serverConfig.App == nil || serverConfig.DB == nil {
		return nil, errors.New("server: app config and db are required")
	}

	return &server{
		ServerConfig:  serverConfig,
		doneCh:        make(chan struct{}),
		internalSrvWG: &sync.WaitGroup{},
	}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *server) Run(ctx context.Context) error {
	router, err := s.router(ctx)
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Addr:              s.App.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s.listenAndServe(ctx)
}

func (s *server) listenAndServe(ctx context.Context) error {
	shutdownCtx, shutdownCancel := signal.NotifyContext(
		ctx,
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer shutdownCancel()

	errGrp, shutdownCtx := errgroup.WithContext(shutdownCtx)

	errGrp.Go(
		func() error {
			log.Printf("server started and is listening at %s...\n", s.App.Addr)

			if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}

			return nil
		},
	)

	errGrp.Go(
		func() error {
			<-shutdownCtx.Done() // block and listen shutdown signals
			log.Println("hold and wait, server is gracefully shutting down...")

			ctx, cancel := context.WithTimeout(
				context.Background(),
				(20 * time.Second),
			)
			defer cancel()

			log.Println("waiting for all pending requests to finish....")
			if err := s.srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server failed shutdown gracefully: %w", err)
			}

			return nil
		},
	)

	err := errGrp.Wait()
	if err == nil {
		log.Println("all pending requests completed!")
	}

	s.stop()

	log.Println("closing other resources...")
	if dbErr := database.Close(s.DB); dbErr != nil {
		log.Printf("server failed to close db for shutdown: %v", dbErr)
	}

	if err != nil {
		return err
	}
	log.Println("server has been gracefully shutdown")
	return nil
}

// stop ends the internal go routines and waits for them. Pending low stock
// alerts are delivered before it returns.
func (s *server) stop() {
	s.stopOnce.Do(func() {
		log.Println("waiting for all internal pending go routines....")
		close(s.doneCh)
		s.internalSrvWG.Wait()
		log.Println("all internal go routines are done")

		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Printf("server failed to close redis: %v", err)
			}
		}
	})
}

// prep prepares server dependencies needed for server to function
func (s *server) prep(ctx context.Context) error {
	engine, err := eventengine.NewEventEngine(
		&eventengine.EventEngineConfig{
			DoneCh:        s.doneCh,
			InternalSrvWG: s.internalSrvWG,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to start event engine: %w", err)
	}
	s.eventEngine = engine

	if s.Mailer == nil {
		s.Mailer = s.newMailer()
	}

	if s.RegisterLimiter == nil {
		limiter, err := s.newRegisterLimiter(ctx)
		if err != nil {
			return err
		}
		s.RegisterLimiter = limiter
	}

	s.tokens = auth.NewTokenService(s.DB, s.App.TokenSecret, s.App.TokenTTL)
	s.images = storage.NewLocalStore(s.App.StorageDir, s.App.PublicURL)

	s.notifier = lowstock.NewNotifier(lowstock.NewStore(s.DB), s.Mailer, s.App.AppURL)
	if err := s.notifier.Listen(s.eventEngine, s.internalSrvWG); err != nil {
		return err
	}

	return nil
}

func (s *server) newMailer() mailer.Mailer {
	mail := s.App.Mail
	if mail.Host == "" {
		log.Println("mail.host is not set, low stock alerts are written to the log")
		return mailer.LogMailer{}
	}
	return mailer.NewSMTPMailer(mail.Host, mail.Port, mail.Username, mail.Password, mail.From)
}

func (s *server) newRegisterLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	if s.App.Redis.Addr == "" {
		return ratelimit.NewMemoryLimiter(s.App.RegisterLimit, s.App.RegisterWindow), nil
	}

	client, err := ratelimit.NewRedisClient(ctx, s.App.Redis.Addr, s.App.Redis.Password, s.App.Redis.DB)
	if err != nil {
		return nil, err
	}
	s.redis = client
	return ratelimit.NewRedisLimiter(client, "register", s.App.RegisterLimit, s.App.RegisterWindow), nil
}

func (s *server) router(ctx context.Context) (*chi.Mux, error) {
	if err := s.prep(ctx); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// strip trailing slashes at the end of the url
	// e.g. /v1/admin/users/1/ -> /v1/admin/users/1
	router.Use(chimiddleware.StripSlashes)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handlerutils.WriteSuccessJSON(w, http.StatusOK, "OK", nil)
	})

	if prefix := strings.TrimRight(s.App.PublicURL, "/"); strings.HasPrefix(prefix, "/") {
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(s.App.StorageDir)))
		router.Get(prefix+"/*", files.ServeHTTP)
	}

	router.Mount("/v1/admin", s.v1Router()) // api version 1 subrouter

	return router, nil
}

func (s *server) v1Router() *chi.Mux {
	r := chi.NewRouter()

	middleware := middlewares.NewMiddleware(s.tokens, s.App.Debug)

	// session feature
	sessionStore := session.NewStore(s.DB)
	sessionService := session.NewService(sessionStore, s.tokens)
	sessionHandler := session.NewHandler(sessionService, middleware, s.RegisterLimiter)
	sessionHandler.RegisterRoutes(r)

	// dashboard feature
	dashboardStore := dashboard.NewStore(s.DB)
	dashboardService := dashboard.NewService(dashboardStore)
	dashboardHandler := dashboard.NewHandler(dashboardService, middleware)
	dashboardHandler.RegisterRoutes(r)

	// users feature
	userStore := user.NewStore(s.DB, s.tokens)
	userService := user.NewService(userStore)
	userHandler := user.NewHandler(userService, middleware)
	userHandler.RegisterRoutes(r)

	// categories feature
	categoryStore := category.NewStore(s.DB)
	categoryService := category.NewService(categoryStore)
	categoryHandler := category.NewHandler(categoryService, middleware)
	categoryHandler.RegisterRoutes(r)

	// products feature
	productStore := product.NewStore(s.DB)
	productService := product.NewService(
		productStore,
		s.images,
		s.notifier,
	)
	productHandler := product.NewHandler(productService, middleware)
	productHandler.RegisterRoutes(r)

	return r
}
