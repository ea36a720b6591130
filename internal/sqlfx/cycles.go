package sqlfx

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"

	"github.com/yurykabanov/logrotd/pkg/domain"
	"github.com/yurykabanov/logrotd/pkg/http/handler"
	"github.com/yurykabanov/logrotd/pkg/storage"
)

// MemoryJournalSize is how many cycles are kept when no database is set.
const MemoryJournalSize = 100

type CycleRepositories struct {
	fx.Out

	Repository handler.CycleRepository
	Observer   domain.CycleObserver `group:"cycle_observers"`
}

func CycleRepository(db *sqlx.DB) CycleRepositories {
	if db == nil {
		repo := storage.NewMemoryCycleRepository(MemoryJournalSize)
		return CycleRepositories{Repository: repo, Observer: repo}
	}

	repo := storage.NewCycleRepository(db)

	return CycleRepositories{Repository: repo, Observer: repo}
}
