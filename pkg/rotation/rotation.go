package rotation

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/yurykabanov/logrotd/pkg/errsink"
)

const (
	DateLayout = "2006-01-02"
	ArchiveExt = ".log"

	FileMode os.FileMode = 0o644
)

// Filer is the set of file operations a rotation needs. Tests swap it to
// simulate failing disks.
type Filer interface {
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	Truncate(name string) error
}

type osFiler struct{}

func (osFiler) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	return f, nil
}

func (osFiler) Create(name string) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Truncate empties the file in place, keeping the inode producers hold open.
// A missing live file is created empty.
func (osFiler) Truncate(name string) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return err
	}

	return f.Close()
}

func DefaultFiler() Filer {
	return osFiler{}
}

// Yesterday is the calendar day before t in t's location.
func Yesterday(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()-1, 0, 0, 0, 0, t.Location())
}

// ArchiveName is the file name a live file is archived under when rotation
// is triggered at trigger: the prefix followed by the previous day's date.
func ArchiveName(prefix string, trigger time.Time) string {
	return prefix + Yesterday(trigger).Format(DateLayout) + ArchiveExt
}

type Result struct {
	LiveFile    string
	ArchiveFile string
	Bytes       int64

	// CopyErr is the first failure of open, copy or close; the archive may be
	// incomplete when set.
	CopyErr error
	// TruncateErr is set when the live file could not be emptied.
	TruncateErr error
}

func (r Result) Failed() bool {
	return r.CopyErr != nil || r.TruncateErr != nil
}

type Rotator struct {
	filer Filer
}

func New(filer Filer) *Rotator {
	if filer == nil {
		filer = DefaultFiler()
	}

	return &Rotator{filer: filer}
}

// Rotate copies the live file into the archive file, then truncates the live
// file. Truncation happens even when the copy failed, so unarchived bytes
// may be lost, as are bytes a producer appends after the copy passed them.
// Every failure goes to sink; nothing is returned as an error.
func (r *Rotator) Rotate(livePath, archivePath string, sink errsink.Sink) Result {
	result := Result{LiveFile: livePath, ArchiveFile: archivePath}

	fail := func(err error) {
		if result.CopyErr == nil {
			result.CopyErr = err
		}
		sink.Report(err)
	}

	src, err := r.filer.Open(livePath)
	if err != nil {
		src = nil
		fail(errors.Wrapf(err, "unable to open live file %s", livePath))
	}

	// The archive is created even if the live file is unreadable.
	dst, err := r.filer.Create(archivePath)
	if err != nil {
		dst = nil
		fail(errors.Wrapf(err, "unable to create archive file %s", archivePath))
	}

	if src != nil && dst != nil {
		result.Bytes, err = io.Copy(dst, src)
		if err != nil {
			fail(errors.Wrapf(err, "unable to copy %s to %s", livePath, archivePath))
		}
	}

	if dst != nil {
		if s, ok := dst.(interface{ Sync() error }); ok {
			if err := s.Sync(); err != nil {
				fail(errors.Wrapf(err, "unable to sync archive file %s", archivePath))
			}
		}

		if err := dst.Close(); err != nil {
			fail(errors.Wrapf(err, "unable to close archive file %s", archivePath))
		}
	}

	if src != nil {
		if err := src.Close(); err != nil {
			fail(errors.Wrapf(err, "unable to close live file %s", livePath))
		}
	}

	if err := r.filer.Truncate(livePath); err != nil {
		result.TruncateErr = errors.Wrapf(err, "unable to truncate live file %s", livePath)
		sink.Report(result.TruncateErr)
	}

	return result
}
