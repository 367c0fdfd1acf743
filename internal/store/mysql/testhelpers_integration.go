//go:build integration

package mysql

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
)

// setupMySQLContainer starts MySQL, applies db/schema.sql and returns an
// open handle. cleanup closes the handle and the container.
func setupMySQLContainer(t require.TestingT, ctx context.Context) (*sql.DB, func()) {
	const (
		dbName = "notification_center_test"
		user   = "testuser"
		pass   = "testpass"
	)

	container, err := tcmysql.RunContainer(ctx,
		tcmysql.WithDatabase(dbName),
		tcmysql.WithUsername(user),
		tcmysql.WithPassword(pass),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("3306/tcp"))
	require.NoError(t, err)

	dsn := user + ":" + pass + "@tcp(" + host + ":" + port.Port() + ")/" + dbName + "?parseTime=true&loc=UTC&multiStatements=true"
	sqlDB, err := Open(ctx, dsn, 30*time.Second)
	require.NoError(t, err)

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "db", "schema.sql"))
	require.NoError(t, err)
	_, err = sqlDB.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	return sqlDB, func() {
		_ = sqlDB.Close()
		_ = container.Terminate(ctx)
	}
}
