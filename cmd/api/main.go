package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pixelsmith.org/internal/auth"
	"pixelsmith.org/internal/config"
	"pixelsmith.org/internal/content"
	"pixelsmith.org/internal/directory"
	"pixelsmith.org/internal/httpapi"
	"pixelsmith.org/internal/identity"
	"pixelsmith.org/internal/mail"
	"pixelsmith.org/internal/migrate"
	"pixelsmith.org/internal/oauth"
	"pixelsmith.org/internal/obs"
	"pixelsmith.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "none"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)
	log := obs.Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	codec, err := auth.NewCodec([]byte(cfg.AuthSecret), cfg.TokenIssuer, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatal("token codec", zap.Error(err))
	}

	if cfg.PGDSN == "" {
		log.Fatal("PIXELSMITH_PG_DSN is required")
	}
	store, err := pg.Open(cfg.PGDSN)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer store.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrate.UpDB(migrateCtx, store.DB()); err != nil {
		cancelMigrate()
		log.Fatal("migrate", zap.Error(err))
	}
	cancelMigrate()

	users := store.Users()
	teams := store.Teams()

	extractor := auth.NewExtractor(codec, directory.CredentialAdapter{Users: users}, cfg.SessionCookie)
	guard := httpapi.NewGuard(codec, extractor, cfg.SessionCookie,
		cfg.SignInPath, cfg.DashboardPath, cfg.TrustTokenRoles)

	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	api := httpapi.New(httpapi.Deps{
		Codec:     codec,
		Extractor: extractor,
		Guard:     guard,
		Identity:  identity.NewService(codec, users, teams, store.SignUps(), mail.LogMailer{}, google),
		Directory: directory.NewService(users, teams),
		Content:   content.NewService(store.Blogs(), store.Projects(), store.Featured()),

		ReadyProbe:    httpapi.ReadyProbe{DB: store.DB()},
		Version:       version,
		SecureCookies: true,

		RateLimitBurst:     cfg.RateLimitBurst,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("starting pixelsmith-api",
		zap.String("version", version),
		zap.String("addr", srv.Addr),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Info("stopped")
}
