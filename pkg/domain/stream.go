package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/yurykabanov/logrotd/pkg/retention"
	"github.com/yurykabanov/logrotd/pkg/rotation"
)

var (
	ErrEmptyDirectory   = errors.New("log manager directory option is empty")
	ErrNoStreams        = errors.New("log manager has no streams to rotate")
	ErrInvalidStream    = errors.New("log stream needs a live file and an archive prefix")
	ErrNegativeMaxAge   = errors.New("retention max age days must not be negative")
	ErrDuplicatedStream = errors.New("log stream is configured twice")
)

// Stream is one rotated log: a live file appended to by some producer and
// the prefix its archives are named with.
type Stream struct {
	LiveFile      string `mapstructure:"live_file"`
	ArchivePrefix string `mapstructure:"archive_prefix"`
}

func DefaultStreams() []Stream {
	return []Stream{
		{LiveFile: "out.log", ArchivePrefix: "node-out-"},
		{LiveFile: "err.log", ArchivePrefix: "node-err-"},
	}
}

type Config struct {
	Directory string
	Streams   []Stream
	Retention retention.Policy
}

func (c Config) Validate() error {
	if c.Directory == "" {
		return ErrEmptyDirectory
	}

	if len(c.Streams) == 0 {
		return ErrNoStreams
	}

	seen := make(map[string]struct{}, len(c.Streams))

	for _, s := range c.Streams {
		if s.LiveFile == "" || s.ArchivePrefix == "" {
			return fmt.Errorf("%w: %+v", ErrInvalidStream, s)
		}

		if _, ok := seen[s.LiveFile]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatedStream, s.LiveFile)
		}
		seen[s.LiveFile] = struct{}{}
	}

	if c.Retention.MaxAgeDays < 0 {
		return ErrNegativeMaxAge
	}

	return nil
}

func (c Config) LivePath(s Stream) string {
	return filepath.Join(c.Directory, s.LiveFile)
}

func (c Config) ArchivePath(s Stream, trigger time.Time) string {
	return filepath.Join(c.Directory, rotation.ArchiveName(s.ArchivePrefix, trigger))
}
