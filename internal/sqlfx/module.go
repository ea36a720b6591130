package sqlfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(JournalConfigProvider),
	fx.Provide(OpenSqliteDatabase),
	fx.Provide(CycleRepository),
	fx.Invoke(CloseSqliteDatabase),
)
