package migrate_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/smsauth/internal/db/migrate"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestRun_UpDownUp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	// Arrange
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("smsauth"),
		tcpostgres.WithUsername("smsauth"),
		tcpostgres.WithPassword("smsauth"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}

	tableExists := func(name string) bool {
		t.Helper()
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		defer conn.Close(ctx)

		var ok bool
		if err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", name).Scan(&ok); err != nil {
			t.Fatalf("lookup table %s: %v", name, err)
		}
		return ok
	}

	// Act & Assert
	for _, step := range []string{migrate.DirectionUp, migrate.DirectionUp, migrate.DirectionDown, migrate.DirectionUp} {
		if err := migrate.Run(dsn, step); err != nil {
			t.Fatalf("Run(%s) error = %v", step, err)
		}
		want := step == migrate.DirectionUp
		for _, table := range []string{"accounts", "data_records", "sms_deliveries"} {
			if got := tableExists(table); got != want {
				t.Fatalf("after %s table %s exists = %v, want %v", step, table, got, want)
			}
		}
	}
}
