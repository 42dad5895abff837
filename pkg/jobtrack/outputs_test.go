package jobtrack

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

type fakeFileAPI struct {
	entries []gridapi.FileInfo
	err     error

	gotSystemID string
	gotPath     string
}

func (f *fakeFileAPI) ListFiles(_ context.Context, systemID, path string, _, _ int) ([]gridapi.FileInfo, error) {
	f.gotSystemID = systemID
	f.gotPath = path
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func archivedJobAPI() *fakeJobAPI {
	return &fakeJobAPI{
		details: &gridapi.JobDetails{
			UUID:             testJobUUID,
			Status:           gridapi.StatusFinished,
			ArchiveSystemID:  "sys.archive",
			ArchiveSystemDir: "/jobs/" + testJobUUID + "/archive",
		},
	}
}

func TestArchiveURI(t *testing.T) {
	ctx := context.Background()

	j, err := New(archivedJobAPI(), testJobUUID)
	require.NoError(t, err)

	uri, err := j.ArchiveURI(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "hpcs://sys.archive/jobs/"+testJobUUID+"/archive", uri)

	uri, err = j.ArchiveURI(ctx, "grid")
	require.NoError(t, err)
	assert.Equal(t, "grid://sys.archive/jobs/"+testJobUUID+"/archive", uri)
}

func TestArchiveURIUnavailable(t *testing.T) {
	api := &fakeJobAPI{details: &gridapi.JobDetails{UUID: testJobUUID, Status: gridapi.StatusRunning}}
	j, err := New(api, testJobUUID)
	require.NoError(t, err)

	_, err = j.ArchiveURI(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArchiveUnavailable))
}

func TestListOutputs(t *testing.T) {
	ctx := context.Background()
	files := &fakeFileAPI{entries: []gridapi.FileInfo{
		{Name: "results.csv", Path: "jobs/" + testJobUUID + "/archive/results.csv"},
		{Name: "trace.log", Path: "jobs/" + testJobUUID + "/archive/logs/trace.log"},
	}}

	j, err := New(archivedJobAPI(), testJobUUID, WithFileAPI(files))
	require.NoError(t, err)

	t.Run("All", func(t *testing.T) {
		entries, err := j.ListOutputs(ctx, "", "", 100, 0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "sys.archive", files.gotSystemID)
		assert.Equal(t, "jobs/"+testJobUUID+"/archive", files.gotPath)
	})

	t.Run("SubPath", func(t *testing.T) {
		_, err := j.ListOutputs(ctx, "logs", "", 100, 0)
		require.NoError(t, err)
		assert.Equal(t, "jobs/"+testJobUUID+"/archive/logs", files.gotPath)
	})

	t.Run("PatternFilter", func(t *testing.T) {
		entries, err := j.ListOutputs(ctx, "", "**/*.log", 100, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "trace.log", entries[0].Name)
	})

	t.Run("BadPattern", func(t *testing.T) {
		_, err := j.ListOutputs(ctx, "", "[", 100, 0)
		require.Error(t, err)
	})
}

func TestListOutputsRequiresFileAPI(t *testing.T) {
	j, err := New(archivedJobAPI(), testJobUUID)
	require.NoError(t, err)

	_, err = j.ListOutputs(context.Background(), "", "", 100, 0)
	require.Error(t, err)
}
