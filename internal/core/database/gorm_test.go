package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGorm_SQLiteMemory(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: "silent"})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "mongo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}

func TestWithDatabaseName(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/secondChance?sslmode=disable",
		withDatabaseName("postgres://u:p@db:5432/other?sslmode=disable", "secondChance"))
	assert.Equal(t, "host=db dbname=x", withDatabaseName("host=db dbname=x", "secondChance"))
	assert.Equal(t, "postgres://db/app", withDatabaseName("postgres://db/app", ""))
}

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://root:pw@127.0.0.1:3306/sc", "", "")
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/sc?charset=utf8mb4&parseTime=true", got)

	got = normalizeMySQLDSN("mysql://root@127.0.0.1:3306/sc?charset=latin1", "admin", "secret")
	assert.Equal(t, "admin:secret@tcp(127.0.0.1:3306)/sc?charset=latin1&parseTime=true", got)

	raw := "user:pass@tcp(localhost:3306)/sc?parseTime=true"
	assert.Equal(t, raw, normalizeMySQLDSN(raw, "x", "y"))
}
