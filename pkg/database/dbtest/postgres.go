// Package dbtest starts a throwaway Postgres with the repository migrations applied.
// Tests that use it are skipped when Docker is unavailable.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"learnflix/pkg/database"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const (
	dbUser     = "postgres"
	dbPassword = "postgres"
	dbName     = "learnflix"
)

func StartPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_USER":     dbUser,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return dsn(host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip integration: cannot start postgres container: %v", err)
		return nil
	}
	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.Open(dsn(host, port.Port()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(sqlDB, migrationsDir()))

	return db
}

func dsn(host, port string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, port, dbName)
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// CreateUser inserts a user row and returns its id.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) string {
	t.Helper()
	var id string
	err := db.Raw(
		`INSERT INTO users (email, username, password, role) VALUES (?, ?, 'x', ?) RETURNING id`,
		username+"@example.test", username, role,
	).Scan(&id).Error
	require.NoError(t, err)
	return id
}

// CreateVideo inserts a video owned by teacherID and returns its id.
func CreateVideo(t *testing.T, db *gorm.DB, teacherID, videoURL string) string {
	t.Helper()
	var id string
	err := db.Raw(
		`INSERT INTO videos (teacher_id, title, video_url) VALUES (?, 'Lesson', ?) RETURNING id`,
		teacherID, videoURL,
	).Scan(&id).Error
	require.NoError(t, err)
	return id
}
