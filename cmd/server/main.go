package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/willemschots/quill/internal"
	"github.com/willemschots/quill/internal/auth"
	authdb "github.com/willemschots/quill/internal/auth/db"
	"github.com/willemschots/quill/internal/db"
	"github.com/willemschots/quill/internal/email"
	"github.com/willemschots/quill/internal/email/postmark"
	"github.com/willemschots/quill/internal/migrate"
	"github.com/willemschots/quill/internal/posts"
	postsdb "github.com/willemschots/quill/internal/posts/db"
	"github.com/willemschots/quill/internal/session"
	"github.com/willemschots/quill/internal/web"
	"github.com/willemschots/quill/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on system env vars")
	}

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	sqlDB, err := db.OpenSQLite(cfg.db.file, true)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.db.migrate {
		logger.Info("attempting to migrate database", "file", cfg.db.file)

		ran, err := migrate.RunFS(ctx, sqlDB, migrations.FS, migrate.Metadata{
			AppVersion: internal.BuildRevision,
			Timestamp:  internal.BuildRevisionTime,
		})
		if err != nil {
			logger.Error("failed to migrate database", "error", err)
			return 1
		}

		for _, m := range ran {
			logger.Info("migration ran", "sequence", m.Sequence, "filename", m.Filename)
		}
	}

	var sender email.Sender = email.NewLogSender(logger)
	if cfg.email.driver == "postmark" {
		sender = postmark.NewSender(http.DefaultClient, postmark.Settings{
			APIURL:        cfg.email.postmarkURL,
			ServerToken:   cfg.email.postmarkToken,
			MessageStream: cfg.email.messageStream,
		})
	}

	mailer, err := email.NewService(sender, email.ServiceConfig{
		From:    cfg.email.from,
		BaseURL: cfg.email.baseURL,
	})
	if err != nil {
		logger.Error("failed to create email service", "error", err)
		return 1
	}

	signer := session.NewSigner(cfg.session.key, session.SignerConfig{
		TTL:    cfg.session.ttl,
		Issuer: cfg.session.issuer,
	})

	authSvc := auth.NewService(authdb.New(sqlDB), mailer, signer)
	postSvc := posts.NewService(postsdb.New(sqlDB))

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler: web.NewServer(&web.ServerDeps{
			Logger:      logger,
			AuthService: authSvc,
			PostService: postSvc,
			Signer:      signer,
		}, web.ServerConfig{
			SecureCookie:   cfg.http.secureCookie,
			AllowedOrigins: cfg.http.allowedOrigins,
		}),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}
