package db

import (
	"testing"

	"github.com/smallbiznis/orderpricing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectNames(t *testing.T) {
	for _, tc := range []struct {
		dbType string
		name   string
	}{
		{"postgres", "postgres"},
		{"mysql", "mysql"},
		{"sqlite", "sqlite"},
	} {
		d, err := Dialect(config.Config{DBType: tc.dbType, DBPath: "test.db"})
		require.NoError(t, err, tc.dbType)
		assert.Equal(t, tc.name, d.Name())
	}
}

func TestDialectUnsupported(t *testing.T) {
	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestPostgresURL(t *testing.T) {
	url := PostgresURL(config.Config{
		DBUser:     "app",
		DBPassword: "secret",
		DBHost:     "db",
		DBPort:     "5432",
		DBName:     "pricing",
		DBSSLMode:  "disable",
	})
	assert.Equal(t, "postgres://app:secret@db:5432/pricing?sslmode=disable", url)
}
