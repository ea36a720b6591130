package configfx

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(PFlags),
	fx.Provide(ViperProvider),
	fx.Invoke(LogConfigSource),
)

func LogConfigSource(logger *logrus.Logger, v *viper.Viper) {
	if file := v.ConfigFileUsed(); file != "" {
		logger.WithField("file", file).Info("Using config file")
	}
}
