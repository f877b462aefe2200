package testdb

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresStartRequest struct {
	User     string
	Password string
	DB       string
}

type StartResponse struct {
	Host string
	Port string
}

func StartPostgres(ctx context.Context, cfg PostgresStartRequest) (StartResponse, func()) {
	return start(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
			"POSTGRES_DB":       cfg.DB,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}, "5432/tcp")
}

func StartRedis(ctx context.Context) (StartResponse, func()) {
	return start(ctx, testcontainers.ContainerRequest{
		Image:        "redis:8.4-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}, "6379/tcp")
}

func StartRabbitMQ(ctx context.Context) (StartResponse, func()) {
	return start(ctx, testcontainers.ContainerRequest{
		Image:        "rabbitmq:4-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForLog("Server startup complete"),
	}, "5672/tcp")
}

func start(ctx context.Context, req testcontainers.ContainerRequest, port string) (StartResponse, func()) {
	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("failed to start %s container: %v", req.Image, err)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		log.Fatalf("failed to get host: %v", err)
	}

	mapped, err := cont.MappedPort(ctx, nat.Port(port))
	if err != nil {
		log.Fatalf("failed to get port: %v", err)
	}

	closer := func() {
		_ = cont.Terminate(context.Background())
	}
	return StartResponse{
		Host: host,
		Port: mapped.Port(),
	}, closer
}

// RunMigrations drops everything and migrates the schema up from folder.
func RunMigrations(t *testing.T, db *sql.DB, folder string) {
	t.Helper()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("failed to get postgres driver: %v", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance("file://"+folder, "test", driver)
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}

	if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to drop existing db objects: %v", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

type dbQuery struct {
	t   *testing.T
	row *sql.Row
}

func Query(t *testing.T, db *sql.DB, query string, args ...any) *dbQuery {
	t.Helper()

	row := db.QueryRow(query, args...)
	require.NoError(t, row.Err())

	return &dbQuery{t: t, row: row}
}

// Exec runs a statement that returns no rows.
func Exec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()

	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}

func (q *dbQuery) AsInt64() int64 {
	q.t.Helper()

	var v int64
	require.NoError(q.t, q.row.Scan(&v))
	return v
}

func (q *dbQuery) AsString() string {
	q.t.Helper()

	var v string
	require.NoError(q.t, q.row.Scan(&v))
	return v
}

func (q *dbQuery) AsBool() bool {
	q.t.Helper()

	var v bool
	require.NoError(q.t, q.row.Scan(&v))
	return v
}
