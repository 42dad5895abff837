package jobtrack

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/3leaps/gostratus/pkg/gridapi"
	"github.com/3leaps/gostratus/pkg/pathmap"
)

// ErrArchiveUnavailable indicates the job has no archive location yet.
// Details expose the archive system and directory only once archiving has
// been scheduled.
var ErrArchiveUnavailable = errors.New("job archive location not available")

// ArchiveURI returns the gateway URI of the job's archive directory.
func (j *Job) ArchiveURI(ctx context.Context, scheme string) (string, error) {
	details, err := j.Details(ctx, false)
	if err != nil {
		return "", err
	}
	if details.ArchiveSystemID == "" || details.ArchiveSystemDir == "" {
		return "", fmt.Errorf("job %s: %w", j.jobUUID, ErrArchiveUnavailable)
	}
	res := pathmap.Resolution{
		SystemID: details.ArchiveSystemID,
		Path:     strings.TrimLeft(details.ArchiveSystemDir, "/"),
	}
	return res.URI(scheme), nil
}

// ListOutputs lists the job's archived outputs under subPath.
//
// pattern, when non-empty, is a doublestar glob applied to each entry's
// path relative to the archive root. Requires a FileAPI (WithFileAPI).
func (j *Job) ListOutputs(ctx context.Context, subPath, pattern string, limit, offset int) ([]gridapi.FileInfo, error) {
	if j.files == nil {
		return nil, fmt.Errorf("job %s: no file API configured for output listing", j.jobUUID)
	}
	details, err := j.Details(ctx, false)
	if err != nil {
		return nil, err
	}
	if details.ArchiveSystemID == "" || details.ArchiveSystemDir == "" {
		return nil, fmt.Errorf("job %s: %w", j.jobUUID, ErrArchiveUnavailable)
	}

	root := strings.TrimLeft(path.Clean("/"+details.ArchiveSystemDir), "/")
	full := root
	if sub := strings.Trim(subPath, "/"); sub != "" {
		full = path.Join(root, sub)
	}

	entries, err := j.files.ListFiles(ctx, details.ArchiveSystemID, full, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list outputs for job %s at %q: %w", j.jobUUID, subPath, err)
	}
	if pattern == "" {
		return entries, nil
	}

	filtered := entries[:0]
	for _, e := range entries {
		rel := strings.TrimPrefix(strings.TrimLeft(e.Path, "/"), root)
		rel = strings.TrimLeft(rel, "/")
		ok, merr := doublestar.Match(pattern, rel)
		if merr != nil {
			return nil, fmt.Errorf("invalid output pattern %q: %w", pattern, merr)
		}
		if ok {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}
