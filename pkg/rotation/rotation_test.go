package rotation

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/logrotd/pkg/errsink"
)

// region filerMock
type filerMock struct {
	mock.Mock
}

func (m *filerMock) Open(name string) (io.ReadCloser, error) {
	args := m.Called(name)

	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *filerMock) Create(name string) (io.WriteCloser, error) {
	args := m.Called(name)

	if w := args.Get(0); w != nil {
		return w.(io.WriteCloser), args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *filerMock) Truncate(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// endregion

// region failingReader
type failingReader struct {
	data   string
	read   bool
	closed bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}

	return 0, errors.New("input/output error")
}

func (r *failingReader) Close() error {
	r.closed = true
	return nil
}

type bufferCloser struct {
	strings.Builder
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

// endregion

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(b)
}

func TestArchiveName(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)

	cases := []struct {
		trigger time.Time
		want    string
	}{
		{time.Date(2023, 6, 15, 0, 0, 0, 0, loc), "node-out-2023-06-14.log"},
		{time.Date(2023, 6, 15, 23, 59, 0, 0, loc), "node-out-2023-06-14.log"},
		{time.Date(2023, 3, 1, 0, 0, 0, 0, loc), "node-out-2023-02-28.log"},
		{time.Date(2024, 3, 1, 0, 0, 0, 0, loc), "node-out-2024-02-29.log"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, loc), "node-out-2023-12-31.log"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ArchiveName("node-out-", c.trigger))
	}
}

func TestYesterday_CalendarNotDuration(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2023-03-26 is only 23 hours long in Berlin.
	trigger := time.Date(2023, 3, 27, 0, 30, 0, 0, loc)

	assert.Equal(t, "2023-03-26", Yesterday(trigger).Format(DateLayout))
}

func TestRotator_Rotate(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "out.log")
	trigger := time.Date(2023, 6, 15, 0, 0, 0, 0, time.Local)
	archive := filepath.Join(dir, ArchiveName("node-out-", trigger))

	writeFile(t, live, "line 1\nline 2\n")

	collector := &errsink.Collector{}
	result := New(nil).Rotate(live, archive, collector.Sink())

	assert.Nil(t, collector.Err())
	assert.False(t, result.Failed())
	assert.Equal(t, int64(14), result.Bytes)
	assert.Equal(t, filepath.Join(dir, "node-out-2023-06-14.log"), result.ArchiveFile)
	assert.Equal(t, "line 1\nline 2\n", readFile(t, archive))
	assert.Equal(t, "", readFile(t, live))
}

func TestRotator_Rotate_OverwritesArchive(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "err.log")
	archive := filepath.Join(dir, "node-err-2023-06-14.log")

	writeFile(t, live, "new")
	writeFile(t, archive, "stale content that is longer")

	result := New(nil).Rotate(live, archive, errsink.Discard)

	assert.False(t, result.Failed())
	assert.Equal(t, "new", readFile(t, archive))
}

func TestRotator_Rotate_MissingLiveFile(t *testing.T) {
	dir := t.TempDir()
	live := filepath.Join(dir, "out.log")
	archive := filepath.Join(dir, "node-out-2023-06-14.log")

	collector := &errsink.Collector{}
	result := New(nil).Rotate(live, archive, collector.Sink())

	assert.NotNil(t, result.CopyErr)
	assert.Nil(t, result.TruncateErr)
	assert.Len(t, collector.Errors(), 1)

	// Archive exists regardless, live file is recreated empty.
	assert.FileExists(t, archive)
	assert.Equal(t, "", readFile(t, live))
}

func TestRotator_Rotate_ReadErrorStillTruncates(t *testing.T) {
	filer := &filerMock{}
	src := &failingReader{data: "partial"}
	dst := &bufferCloser{}

	filer.On("Open", "/logs/out.log").Return(src, nil)
	filer.On("Create", "/logs/node-out-2023-06-14.log").Return(dst, nil)
	filer.On("Truncate", "/logs/out.log").Return(nil)

	collector := &errsink.Collector{}
	result := New(filer).Rotate("/logs/out.log", "/logs/node-out-2023-06-14.log", collector.Sink())

	filer.AssertExpectations(t)

	assert.NotNil(t, result.CopyErr)
	assert.Nil(t, result.TruncateErr)
	assert.Equal(t, int64(7), result.Bytes)
	assert.Equal(t, "partial", dst.String())
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
	assert.Len(t, collector.Errors(), 1)
}

func TestRotator_Rotate_CreateErrorStillTruncates(t *testing.T) {
	filer := &filerMock{}
	src := &failingReader{data: "data"}

	filer.On("Open", "/logs/out.log").Return(src, nil)
	filer.On("Create", "/logs/archive.log").Return(nil, os.ErrPermission)
	filer.On("Truncate", "/logs/out.log").Return(nil)

	collector := &errsink.Collector{}
	result := New(filer).Rotate("/logs/out.log", "/logs/archive.log", collector.Sink())

	filer.AssertExpectations(t)

	assert.True(t, errors.Is(result.CopyErr, os.ErrPermission))
	assert.True(t, src.closed)
	assert.Len(t, collector.Errors(), 1)
}

func TestRotator_Rotate_TruncateErrorIsReported(t *testing.T) {
	filer := &filerMock{}
	dst := &bufferCloser{}

	filer.On("Open", "/logs/out.log").Return(io.NopCloser(strings.NewReader("abc")), nil)
	filer.On("Create", "/logs/archive.log").Return(dst, nil)
	filer.On("Truncate", "/logs/out.log").Return(os.ErrPermission)

	collector := &errsink.Collector{}
	result := New(filer).Rotate("/logs/out.log", "/logs/archive.log", collector.Sink())

	assert.Nil(t, result.CopyErr)
	assert.NotNil(t, result.TruncateErr)
	assert.True(t, result.Failed())
	assert.Equal(t, "abc", dst.String())
	assert.Len(t, collector.Errors(), 1)
}
