package cli

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCLITestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:cli_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "create-test-doctor", "worker"})
	assert.Equal(t, "physiofriend", root.Name())
}

func TestCreateTestDoctorIsIdempotent(t *testing.T) {
	db := setupCLITestDB(t)

	created, err := createTestDoctor(db, "test1234")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = createTestDoctor(db, "test1234")
	require.NoError(t, err)
	assert.False(t, created)

	var d model.Doctor
	require.NoError(t, db.Where("email = ?", testDoctorEmail).First(&d).Error)
	assert.True(t, d.Available)
	assert.True(t, util.VerifyPassword("test1234", d.Password))
}

func TestCreateTestDoctorRejectsShortPassword(t *testing.T) {
	db := setupCLITestDB(t)
	_, err := createTestDoctor(db, "test123")
	assert.ErrorIs(t, err, util.ErrPasswordTooShort)
}

func TestRunWorkerRequiresBroker(t *testing.T) {
	err := runWorker(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, errNoBroker)
}
