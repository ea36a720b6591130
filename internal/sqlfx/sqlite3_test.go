package sqlfx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/logrotd/pkg/domain"
	"github.com/yurykabanov/logrotd/pkg/storage"
)

func testConfig(t *testing.T) *JournalConfig {
	migrations, err := filepath.Abs("../../migrations")
	require.NoError(t, err)

	return &JournalConfig{
		DSN:            filepath.Join(t.TempDir(), "journal.db"),
		DatabaseName:   "logrotd",
		MigrationsPath: "file://" + migrations,
	}
}

func TestOpenSqliteDatabase_Disabled(t *testing.T) {
	logger, _ := test.NewNullLogger()

	db, err := OpenSqliteDatabase(&JournalConfig{}, logger)

	assert.NoError(t, err)
	assert.Nil(t, db)

	repos := CycleRepository(db)
	assert.IsType(t, &storage.MemoryCycleRepository{}, repos.Repository)
}

func TestOpenSqliteDatabase_Migrates(t *testing.T) {
	logger, _ := test.NewNullLogger()
	config := testConfig(t)

	db, err := OpenSqliteDatabase(config, logger)
	require.NoError(t, err)
	defer db.Close()

	// Running migrations again is a no-op.
	require.NoError(t, Migrate(db, config))

	repos := CycleRepository(db)
	require.IsType(t, &storage.CycleRepository{}, repos.Repository)

	now := time.Now().UTC()
	require.NoError(t, repos.Observer.ObserveCycle(context.Background(), domain.CycleReport{
		Id:         "first",
		TriggerAt:  now,
		StartedAt:  now,
		FinishedAt: now,
	}))

	cycles, err := repos.Repository.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "first", cycles[0].Id)
}

func TestOpenSqliteDatabase_BadMigrations(t *testing.T) {
	logger, _ := test.NewNullLogger()
	config := testConfig(t)
	config.MigrationsPath = "file://" + filepath.Join(t.TempDir(), "nowhere")

	db, err := OpenSqliteDatabase(config, logger)

	assert.Error(t, err)
	assert.Nil(t, db)
}
