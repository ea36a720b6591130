package retention

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/yurykabanov/logrotd/pkg/errsink"
)

const (
	// DefaultPattern matches archives of the default streams only; archives
	// with a custom prefix outside it are never swept.
	DefaultPattern = "node-*.log"

	DefaultMaxAgeDays = 7

	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

type Policy struct {
	MaxAgeDays int `mapstructure:"max_age_days"`

	// CountGate skips the whole sweep while the number of matched archives
	// does not exceed MaxAgeDays. Deletion itself stays age based.
	CountGate bool `mapstructure:"count_gate"`
}

func DefaultPolicy() Policy {
	return Policy{MaxAgeDays: DefaultMaxAgeDays, CountGate: true}
}

// Deadline is the instant archives must be strictly older than to be removed.
func (p Policy) Deadline(now time.Time) time.Time {
	return now.Add(-time.Duration(p.MaxAgeDays) * day)
}

type Filer interface {
	List(dir string) ([]string, error)
	Remove(name string) error
}

type osFiler struct{}

func (osFiler) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

func (osFiler) Remove(name string) error {
	return os.Remove(name)
}

func DefaultFiler() Filer {
	return osFiler{}
}

// ArchiveDate extracts the first YYYY-MM-DD substring of a file's base name
// as local midnight in loc. Only the first candidate is considered, so a
// malformed first date means the file has no date at all.
func ArchiveDate(name string, loc *time.Location) (time.Time, bool) {
	match := datePattern.FindString(filepath.Base(name))
	if match == "" {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(dateLayout, match, loc)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

type Result struct {
	Matched []string
	Deleted []string
	// Undated files matched the pattern but carry no usable date; they are
	// always kept.
	Undated []string
	// Gated is true when the count gate held and nothing was examined.
	Gated bool
}

type Sweeper struct {
	policy Policy
	filer  Filer
}

func New(policy Policy, filer Filer) *Sweeper {
	if filer == nil {
		filer = DefaultFiler()
	}

	return &Sweeper{policy: policy, filer: filer}
}

func (s *Sweeper) Policy() Policy {
	return s.policy
}

// Sweep removes archives in dir that match pattern and whose embedded date is
// older than the retention window relative to now. Failures are reported to
// sink, one bad file never stops the sweep.
func (s *Sweeper) Sweep(dir, pattern string, now time.Time, sink errsink.Sink) Result {
	var result Result

	names, err := s.filer.List(dir)
	if err != nil {
		sink.Report(errors.Wrapf(err, "unable to list %s", dir))
		return result
	}

	for _, name := range names {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			sink.Report(errors.Wrapf(err, "invalid archive pattern %q", pattern))
			return result
		}

		if ok {
			result.Matched = append(result.Matched, filepath.Join(dir, name))
		}
	}

	if s.policy.CountGate && len(result.Matched) <= s.policy.MaxAgeDays {
		result.Gated = true
		return result
	}

	deadline := s.policy.Deadline(now)

	for _, file := range result.Matched {
		date, ok := ArchiveDate(file, now.Location())
		if !ok {
			result.Undated = append(result.Undated, file)
			continue
		}

		if !date.Before(deadline) {
			continue
		}

		if err := s.filer.Remove(file); err != nil {
			sink.Report(errors.Wrapf(err, "unable to remove archive %s", file))
			continue
		}

		result.Deleted = append(result.Deleted, file)
	}

	return result
}
