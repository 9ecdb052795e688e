package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banisa-service/internal/app"
	"banisa-service/internal/config"
	"banisa-service/internal/domain"
	"banisa-service/internal/infra/file"
	"banisa-service/internal/infra/memory"
	pgloader "banisa-service/internal/infra/postgres"
	redisstore "banisa-service/internal/infra/redis"
	transport "banisa-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultCorpusID = "tfi"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the puzzle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CorpusLoader = memory.NewStaticCorpusLoader(sampleCorpora())
	switch {
	case pool != nil:
		loader = pgloader.NewCorpusLoader(pool)
	case cfg.Corpus.Dir != "":
		loader = file.NewCorpusLoader(cfg.Corpus.Dir)
	}

	corpusTTL := config.TTLDuration(cfg.Corpus.TTL, 10*time.Minute)
	var corpora app.CorpusRepository
	if redisClient != nil {
		corpora = redisstore.NewCorpusRepository(redisClient, loader, corpusTTL)
	} else {
		corpora = memory.NewCorpusRepository(loader, corpusTTL)
	}

	var store interface {
		app.SessionRepository
		transport.SessionCounter
	}
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewPuzzleService(store, corpora,
		app.WithDuration(config.Seconds(cfg.Game.Duration, 5*time.Minute)),
		app.WithMaxQuestions(cfg.Game.MaxQuestions),
	)

	corpusID := cfg.Corpus.ID
	if corpusID == "" {
		corpusID = defaultCorpusID
	}
	wsHandler := transport.NewWSHandler(service, transport.Options{
		DefaultCorpus: corpusID,
		Tick:          config.TTLDuration(cfg.Game.Tick, time.Second),
		Rate:          cfg.WS.Rate,
		Burst:         cfg.WS.Burst,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(wsHandler, store),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Str("corpus", corpusID).Msg("starting puzzle service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCorpora provides a minimal corpus; configure corpus.dir or Postgres for real data.
func sampleCorpora() map[string][]domain.ClueRecord {
	return map[string][]domain.ClueRecord{
		defaultCorpusID: {
			{Question: "Which film had the song 'Nuvvu Nenu Prema'?", Answer: "Nuvvu Nenu Prema", Song: "Nuvvu Nenu Prema", Movie: "Kushi", Words: []string{"KUSHI"}},
			{Question: "Pawan Kalyan and Bhumika starred in this 2001 hit.", Answer: "Pawan Kalyan", Movie: "Kushi", Words: []string{"KUSHI"}},
			{Question: "Which Venkatesh film shares its title with a king?", Answer: "Venkatesh", Movie: "Raja", Words: []string{"RAJA"}},
			{Question: "Name the 1999 film with the song 'Mallela Vaana'.", Answer: "Mallela Vaana", Song: "Mallela Vaana", Movie: "Raja", Words: []string{"RAJA"}},
			{Question: "Rajamouli's reincarnation epic of 2009?", Answer: "Ram Charan", Movie: "Magadheera", Words: []string{"MAGADHEERA"}},
			{Question: "Which film features 'Dheera Dheera'?", Answer: "Dheera Dheera", Song: "Dheera Dheera", Movie: "Magadheera", Words: []string{"MAGADHEERA"}},
		},
	}
}
