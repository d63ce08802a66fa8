package main

import (
	"log"
	"os"
	"time"

	"github.com/golang-cafe/saved-jobs/internal/bookmark"
	"github.com/golang-cafe/saved-jobs/internal/config"
	"github.com/golang-cafe/saved-jobs/internal/database"
	"github.com/golang-cafe/saved-jobs/internal/handler"
	"github.com/golang-cafe/saved-jobs/internal/middleware"
	"github.com/golang-cafe/saved-jobs/internal/remote"
	"github.com/golang-cafe/saved-jobs/internal/savedjob"
	"github.com/golang-cafe/saved-jobs/internal/server"
	"github.com/golang-cafe/saved-jobs/internal/template"
	"github.com/golang-cafe/saved-jobs/static"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	if cfg.Env == "dev" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	var services handler.ServiceFactory
	switch cfg.SavedJobsBackend {
	case config.BackendRemote:
		client := remote.NewClient(cfg.RemoteAPIBaseURL, remote.WithTimeout(cfg.RemoteAPITimeout))
		services = func(profile *middleware.UserJWT) savedjob.Service {
			return client.ForJobSeeker(profile.UserID, profile.Token)
		}
	default:
		conn, err := database.GetDbConn(cfg)
		if err != nil {
			log.Fatalf("unable to connect to postgres: %v", err)
		}
		defer database.CloseDbConn(conn)
		bookmarkRepo := bookmark.NewRepository(conn)
		services = func(profile *middleware.UserJWT) savedjob.Service {
			return bookmarkRepo.ForUser(profile.UserID)
		}
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	svr := server.NewServer(
		cfg,
		mux.NewRouter(),
		template.NewTemplate(static.Views),
		sessionStore,
		logger,
	)
	registry := savedjob.NewRegistry(savedjob.WithLogger(logger.With().Str("component", "savedjob").Logger()))

	// saved jobs page
	svr.RegisterRoute(
		"/saved-jobs",
		middleware.UserAuthenticatedMiddleware(sessionStore, svr.GetJWTSigningKey(), handler.SavedJobsPageHandler(svr, registry, services)),
		[]string{"GET"},
	)

	// saved jobs snapshot
	svr.RegisterRoute(
		"/x/saved-jobs",
		middleware.UserAuthenticatedMiddleware(sessionStore, svr.GetJWTSigningKey(), handler.SavedJobsJSONHandler(svr, registry, services)),
		[]string{"GET"},
	)

	// save job
	svr.RegisterRoute(
		"/x/saved-jobs",
		middleware.UserAuthenticatedMiddleware(sessionStore, svr.GetJWTSigningKey(), handler.SaveJobHandler(svr, registry, services)),
		[]string{"POST"},
	)

	// retry loading saved jobs
	svr.RegisterRoute(
		"/x/saved-jobs/refresh",
		middleware.UserAuthenticatedMiddleware(sessionStore, svr.GetJWTSigningKey(), handler.RefreshSavedJobsHandler(svr, registry, services)),
		[]string{"POST"},
	)

	// unsave job
	svr.RegisterRoute(
		"/x/saved-jobs/{id}",
		middleware.UserAuthenticatedMiddleware(sessionStore, svr.GetJWTSigningKey(), handler.RemoveSavedJobHandler(svr, registry, services)),
		[]string{"DELETE"},
	)

	// unsave job from the saved jobs page
	svr.RegisterRoute(
		"/x/saved-jobs/{id}/remove",
		middleware.UserAuthenticatedMiddleware(sessionStore, svr.GetJWTSigningKey(), handler.RemoveSavedJobFormHandler(svr, registry, services)),
		[]string{"POST"},
	)

	log.Fatal(svr.Run())
}
