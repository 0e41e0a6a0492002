package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APPENV", "test")
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.True(t, cfg.IsTest())
	assert.Equal(t, uint16(4000), cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "https://wa.me", cfg.WhatsAppLink)
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("APPENV", "production")
	t.Setenv("APPPORT", "8081")
	t.Setenv("DBDRIVER", "postgres")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("WHATSAPP_NUMBER", "+15550001111")
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)

	cfg := LoadConfig()
	assert.False(t, cfg.IsTest())
	assert.Equal(t, uint16(8081), cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "+15550001111", cfg.WhatsAppNumber)
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUSER: "root", DBPass: "pw", DBHost: "db", DBPort: 3306, DBName: "clinic"}
	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "root:pw@tcp(db:3306)/clinic?charset=utf8mb4&parseTime=true", dsn)

	cfg.DBDriver = "postgres"
	cfg.DBPort = 5432
	dsn, err = cfg.DSN()
	require.NoError(t, err)
	assert.Contains(t, dsn, "host=db port=5432")
	assert.Contains(t, dsn, "dbname=clinic")

	cfg.DBDriver = "oracle"
	_, err = cfg.DSN()
	assert.Error(t, err)
}

// Test that ConnectDatabase respects APPENV=test and hands back an in-memory sqlite database
func TestConnectDatabase_TestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")
	t.Setenv("DBNAME", "config_connect_test")
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)

	db, err := ConnectDatabase()
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, "sqlite", db.Dialector.Name())
}
