package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	apicontext "github.com/hiready/hiready-server/internal/api/http/context"
	"github.com/hiready/hiready-server/internal/api/http/router"
	httpServer "github.com/hiready/hiready-server/internal/api/http/server"
	"github.com/hiready/hiready-server/internal/aptitude"
	"github.com/hiready/hiready-server/internal/config"
	"github.com/hiready/hiready-server/internal/llm"
	"github.com/hiready/hiready-server/internal/logger"
	"github.com/hiready/hiready-server/internal/model"
	"github.com/hiready/hiready-server/internal/password"
	"github.com/hiready/hiready-server/internal/repository/memory"
	"github.com/hiready/hiready-server/internal/repository/postgres"
	"github.com/hiready/hiready-server/internal/retry"
	"github.com/hiready/hiready-server/internal/server"
	"github.com/hiready/hiready-server/internal/service"
	storage "github.com/hiready/hiready-server/internal/storage/minio"
	"github.com/hiready/hiready-server/internal/token"
	"github.com/hiready/hiready-server/internal/transcription"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

type stores struct {
	users      model.UserStore
	resumes    model.ResumeStore
	interviews model.InterviewStore
	aptitude   model.AptitudeStore
	closer     io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	if st.closer != nil {
		defer st.closer.Close()
	}

	var fileStorage model.Storage
	if cfg.Storage.Enabled {
		fileStorage, err = storage.Dial(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize file storage", "error", err)
		}
	} else {
		logger.Warn("file storage disabled, resume uploads are rejected")
	}

	llmOpts := llm.Options{
		Provider:        cfg.LLM.Provider,
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		MaxTokens:       cfg.LLM.MaxTokens,
		Temperature:     cfg.LLM.Temperature,
		Project:         cfg.LLM.VertexProject,
		Location:        cfg.LLM.VertexLocation,
		CredentialsFile: cfg.LLM.CredentialsFile,
	}
	interviewer, err := llm.New(ctx, llmOpts)
	if err != nil {
		logger.Fatal("failed to create interviewer llm client", "error", err)
	}
	defer interviewer.Close()

	llmOpts.MaxTokens = cfg.LLM.AnalysisMaxTokens
	analyst, err := llm.New(ctx, llmOpts)
	if err != nil {
		logger.Fatal("failed to create analysis llm client", "error", err)
	}
	defer analyst.Close()

	var transcriber model.Transcriber
	if cfg.Transcription.APIKey != "" {
		transcriber, err = transcription.New(transcription.Options{
			APIKey:   cfg.Transcription.APIKey,
			BaseURL:  cfg.Transcription.BaseURL,
			Model:    cfg.Transcription.Model,
			Language: cfg.Transcription.Language,
		})
		if err != nil {
			logger.Fatal("failed to create transcription client", "error", err)
		}
	} else {
		logger.Warn("transcription disabled, recorded answers are rejected")
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := password.NewHasher(cfg.KDF.Time, cfg.KDF.MemKiB, cfg.KDF.Par)
	policy := retry.Policy{Attempts: cfg.Interview.RetryAttempts, BaseDelay: cfg.Interview.RetryBaseDelay}

	authService := service.NewAuth(st.users, hasher, tokenManager, cfg.JWT.SessionTTL, logger)
	profileService := service.NewProfile(st.users, logger)
	resumeService := service.NewResume(st.resumes, fileStorage, cfg.Storage.PresignTTL, logger)
	interviewService := service.NewInterview(st.interviews, logger)
	aptitudeService := service.NewAptitude(st.aptitude, aptitude.DefaultBank(), logger)
	analysisService := service.NewAnalysis(analyst, interviewService, resumeService, policy, logger)
	reportService := service.NewReport(profileService, resumeService, interviewService, aptitudeService, logger)
	sessions := service.NewSessions(interviewService, interviewer, transcriber, service.SessionConfig{
		TimeLimit:  cfg.Interview.TimeLimit,
		MaxTurns:   cfg.Interview.MaxTurns,
		Retry:      policy,
		SessionTTL: cfg.Interview.SessionTTL,
	}, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.Run(ctx)
	}()

	r := router.New(router.Services{
		Auth:      authService,
		Profile:   profileService,
		Resumes:   resumeService,
		Interview: interviewService,
		Aptitude:  aptitudeService,
		Sessions:  sessions,
		Analysis:  analysisService,
		Reports:   reportService,
	}, tokenManager, apicontext.NewManager(), router.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SecureCookie:   cfg.HTTP.SecureCookie,
		BodyLimit:      cfg.HTTP.BodyLimitMiB << 20,
	}, logger)

	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP)

	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}
	sessions.Shutdown()

	wg.Wait()
	logger.Info("shutdown complete")
}

// openStores connects the configured persistence backend.
func openStores(ctx context.Context, cfg config.Database) (stores, error) {
	switch cfg.Driver {
	case "memory":
		m := memory.NewStore()
		return stores{
			users:      m.Users(),
			resumes:    m.Resumes(),
			interviews: m.Interviews(),
			aptitude:   m.Aptitude(),
		}, nil
	case "", "postgres":
		conn, err := postgres.NewConnection(ctx, cfg.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:      postgres.NewUserRepository(conn.DB),
			resumes:    postgres.NewResumeRepository(conn.DB),
			interviews: postgres.NewInterviewRepository(conn.DB),
			aptitude:   postgres.NewAptitudeRepository(conn.DB),
			closer:     conn,
		}, nil
	default:
		return stores{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
