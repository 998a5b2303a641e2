package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// EnvTestDSN points tests at an existing PostgreSQL instead of a container.
const EnvTestDSN = "TANKRUN_TEST_DSN"

// PostgresDSN returns a DSN of an empty PostgreSQL 16 database. It uses
// EnvTestDSN when set and starts a container otherwise; the container is
// terminated on cleanup. Tests are skipped in -short mode or without Docker.
func PostgresDSN(tb testing.TB) string {
	tb.Helper()

	if dsn := os.Getenv(EnvTestDSN); dsn != "" {
		return dsn
	}
	if testing.Short() {
		tb.Skip("postgres container in -short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Skipf("starting postgres container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting connection string: %v", err)
	}
	return dsn
}
