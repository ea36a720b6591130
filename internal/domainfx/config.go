package domainfx

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/yurykabanov/logrotd/pkg/domain"
	"github.com/yurykabanov/logrotd/pkg/retention"
	"github.com/yurykabanov/logrotd/pkg/schedule"
)

const (
	ConfigDirectory           = "directory"
	ConfigStreams             = "streams"
	ConfigScheduleTimes       = "schedule.times"
	ConfigScheduleCron        = "schedule.cron"
	ConfigRetentionMaxAgeDays = "retention.max_age_days"
	ConfigRetentionCountGate  = "retention.count_gate"
)

// Schedule is the active trigger schedule together with the form it was
// configured in.
type Schedule struct {
	cron.Schedule
	Description string
}

func LoadConfig(v *viper.Viper) (domain.Config, error) {
	config := domain.Config{
		Directory: v.GetString(ConfigDirectory),
		Retention: retention.Policy{
			MaxAgeDays: v.GetInt(ConfigRetentionMaxAgeDays),
			CountGate:  v.GetBool(ConfigRetentionCountGate),
		},
	}

	if err := v.UnmarshalKey(ConfigStreams, &config.Streams); err != nil {
		return domain.Config{}, errors.Wrap(err, "Unable to unmarshal streams")
	}

	if err := config.Validate(); err != nil {
		return domain.Config{}, errors.Wrap(err, "Invalid log manager config")
	}

	return config, nil
}

// LoadSchedule prefers a cron expression and falls back to the list of
// daily trigger times.
func LoadSchedule(v *viper.Viper) (Schedule, error) {
	if expr := v.GetString(ConfigScheduleCron); expr != "" {
		s, err := cron.ParseStandard(expr)
		if err != nil {
			return Schedule{}, errors.Wrapf(err, "Unable to parse schedule %q", expr)
		}

		return Schedule{Schedule: s, Description: expr}, nil
	}

	var times []schedule.Time

	if err := v.UnmarshalKey(ConfigScheduleTimes, &times); err != nil {
		return Schedule{}, errors.Wrap(err, "Unable to unmarshal schedule times")
	}

	s, err := schedule.New(times...)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "Invalid schedule times")
	}

	return Schedule{Schedule: s, Description: s.String()}, nil
}
