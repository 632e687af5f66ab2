package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-tracker/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "att",
		Password: "secret",
		Name:     "attendance",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5433 user=att password=secret dbname=attendance sslmode=disable", dsn)
}

func TestConfigureAppliesPoolLimits(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	db := sqlx.NewDb(raw, "sqlmock")
	Configure(db, config.DatabaseConfig{MaxOpenConns: 7})

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
