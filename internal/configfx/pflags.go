package configfx

import (
	"os"

	"github.com/spf13/pflag"
)

const (
	FlagConfig     = "config"
	FlagDirectory  = "directory"
	FlagMaxAgeDays = "max-age-days"
	FlagLogLevel   = "log-level"
)

func PFlags() (*pflag.FlagSet, error) {
	return ParseFlags(os.Args[1:])
}

func ParseFlags(args []string) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	fs.StringP(FlagConfig, "c", "", "Config file")
	fs.StringP(FlagDirectory, "d", "", "Directory with live and archived logs")
	fs.Int(FlagMaxAgeDays, DefaultMaxAgeDays, "Days archives are kept")
	fs.String(FlagLogLevel, DefaultLogLevel, "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return fs, nil
}
