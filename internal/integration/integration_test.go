package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"banisa-service/internal/app"
	"banisa-service/internal/domain"
	pgstore "banisa-service/internal/infra/postgres"
	pgmigrations "banisa-service/internal/infra/postgres/migrations"
	infraredis "banisa-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestSolvePuzzleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCorpus(t, ctx, pgURL, "tfi", sampleCorpus())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewCorpusLoader(pool)
	records, err := loader.LoadCorpus(ctx, "tfi")
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	if len(records) != 2 || records[0].Song != "Mallela Vaana" || records[1].Song != "" {
		t.Fatalf("unexpected records from postgres: %+v", records)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	corpora := infraredis.NewCorpusRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewPuzzleService(sessionStore, corpora, app.WithChooser(func(int) int { return 0 }))

	session, err := service.Start(ctx, "tfi")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Word() != "RAJA" {
		t.Fatalf("expected RAJA, got %s", session.Word())
	}

	var res app.LetterResult
	for i, l := range []string{"R", "A", "J", "A"} {
		res, err = service.SetLetter(ctx, session.ID(), i, l)
		if err != nil {
			t.Fatalf("set letter: %v", err)
		}
	}
	if !res.State.IsOver || !res.State.IsSuccess {
		t.Fatalf("expected solved puzzle, got %+v", res.State)
	}

	if _, err := service.Start(ctx, "missing"); err == nil {
		t.Fatalf("expected setup failure for unknown corpus")
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "banisa", "POSTGRES_PASSWORD": "banisapass", "POSTGRES_DB": "banisadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://banisa:banisapass@%s:%s/banisadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCorpus(t *testing.T, ctx context.Context, dsn, corpusID string, records []domain.ClueRecord) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	n, err := pgstore.NewCorpusImporter(db).Import(ctx, corpusID, records)
	if err != nil {
		t.Fatalf("import corpus: %v", err)
	}
	if n != len(records) {
		t.Fatalf("expected %d rows imported, got %d", len(records), n)
	}
	// Importing again replaces rather than duplicates.
	if _, err := pgstore.NewCorpusImporter(db).Import(ctx, corpusID, records); err != nil {
		t.Fatalf("re-import corpus: %v", err)
	}
}

func sampleCorpus() []domain.ClueRecord {
	return []domain.ClueRecord{
		{Question: "Which film features the song 'Mallela Vaana'?", Answer: "Mallela Vaana", Song: "Mallela Vaana", Movie: "Raja", Words: []string{"RAJA"}},
		{Question: "Venkatesh and Soundarya starred in this 1999 film.", Answer: "Venkatesh", Movie: "Raja", Words: []string{"raja"}},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
