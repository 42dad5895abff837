package pathmap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// fakeSystemAPI serves canned project-system lookups.
type fakeSystemAPI struct {
	systems   []gridapi.SystemSummary
	searchErr error
	calls     int
}

func (f *fakeSystemAPI) SearchSystems(_ context.Context, term, idPrefix string) ([]gridapi.SystemSummary, error) {
	f.calls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	_ = term
	_ = idPrefix
	return f.systems, nil
}

func (f *fakeSystemAPI) GetSystem(_ context.Context, systemID string) (*gridapi.SystemSummary, error) {
	for _, s := range f.systems {
		if s.ID == systemID {
			sys := s
			return &sys, nil
		}
	}
	return nil, fmt.Errorf("get system %s: %w", systemID, gridapi.ErrNotFound)
}

func newTestResolver(identity string, systems gridapi.SystemAPI) *Resolver {
	return NewResolver(Config{Identity: identity}, systems, nil)
}

func TestResolvePersonal(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver("alice", nil)

	cases := []struct {
		in   string
		path string
	}{
		{"/home/jupyter/MyData/sims/run1", "alice/sims/run1"},
		{"jupyter/mydata/sims", "alice/sims"},
		{"/MyData/x", "alice/x"},
		{"mydata", "alice"},
		{"MyData/deep/nested/dir", "alice/deep/nested/dir"},
	}
	for _, tc := range cases {
		res, err := r.Resolve(ctx, tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, DefaultPersonalSystemID, res.SystemID, tc.in)
		assert.Equal(t, tc.path, res.Path, tc.in)
		assert.True(t, res.RequiresIdentity, tc.in)
	}
}

func TestResolvePersonalWithoutIdentity(t *testing.T) {
	r := newTestResolver("", nil)
	_, err := r.Resolve(context.Background(), "/MyData/x")
	require.Error(t, err)
	assert.True(t, IsIdentityRequired(err))
}

func TestResolveCommunity(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver("", nil)

	res, err := r.Resolve(ctx, "jupyter/CommunityData/benchmarks")
	require.NoError(t, err)
	assert.Equal(t, DefaultCommunitySystemID, res.SystemID)
	assert.Equal(t, "benchmarks", res.Path)
	assert.False(t, res.RequiresIdentity)

	res, err = r.Resolve(ctx, "/CommunityData")
	require.NoError(t, err)
	assert.Equal(t, "", res.Path)
}

func TestRuleOrderPersonalBeforeCommunity(t *testing.T) {
	// A path containing both aliases must hit the earlier rule.
	r := newTestResolver("alice", nil)
	res, err := r.Resolve(context.Background(), "/home/jupyter/MyData/CommunityData")
	require.NoError(t, err)
	assert.Equal(t, DefaultPersonalSystemID, res.SystemID)
	assert.Equal(t, "alice/CommunityData", res.Path)
}

func TestResolveProject(t *testing.T) {
	ctx := context.Background()

	t.Run("UniqueMatch", func(t *testing.T) {
		fake := &fakeSystemAPI{systems: []gridapi.SystemSummary{
			{ID: "project-7241891709552296426-242ac11c-0001-012", Description: "Storage for PRJ-3908"},
		}}
		r := newTestResolver("", fake)

		res, err := r.Resolve(ctx, "projects/PRJ-3908/inputs/mesh")
		require.NoError(t, err)
		assert.Equal(t, "project-7241891709552296426-242ac11c-0001-012", res.SystemID)
		assert.Equal(t, "inputs/mesh", res.Path)
		assert.Equal(t, 1, fake.calls)
	})

	t.Run("AmbiguousMatch", func(t *testing.T) {
		fake := &fakeSystemAPI{systems: []gridapi.SystemSummary{
			{ID: "project-a", Description: "PRJ-1 copy one"},
			{ID: "project-b", Description: "PRJ-1 copy two"},
		}}
		r := newTestResolver("", fake)

		_, err := r.Resolve(ctx, "/projects/PRJ-1/x")
		require.Error(t, err)
		assert.True(t, IsProjectResolution(err))
	})

	t.Run("NoMatch", func(t *testing.T) {
		fake := &fakeSystemAPI{}
		r := newTestResolver("", fake)

		_, err := r.Resolve(ctx, "projects/PRJ-404/x")
		require.Error(t, err)
		assert.True(t, IsProjectResolution(err))
	})

	t.Run("DirectSystemTokenFallback", func(t *testing.T) {
		token := "7241891709552296426-242ac11c-0001-012"
		fake := &fakeSystemAPI{systems: []gridapi.SystemSummary{
			{ID: "project-" + token, Description: "no human name"},
		}}
		// The description never mentions the token, so the substring
		// filter yields zero matches and the direct lookup kicks in.
		r := newTestResolver("", fake)

		res, err := r.Resolve(ctx, "projects/"+token+"/out")
		require.NoError(t, err)
		assert.Equal(t, "project-"+token, res.SystemID)
		assert.Equal(t, "out", res.Path)
	})

	t.Run("MissingProjectID", func(t *testing.T) {
		r := newTestResolver("", &fakeSystemAPI{})
		_, err := r.Resolve(ctx, "projects/")
		require.Error(t, err)
		assert.True(t, IsProjectResolution(err))
	})

	t.Run("SearchError", func(t *testing.T) {
		fake := &fakeSystemAPI{searchErr: errors.New("gateway down")}
		r := newTestResolver("", fake)
		_, err := r.Resolve(ctx, "projects/PRJ-1/x")
		require.Error(t, err)
	})

	t.Run("NilSystemAPI", func(t *testing.T) {
		r := newTestResolver("", nil)
		_, err := r.Resolve(ctx, "projects/PRJ-1/x")
		require.Error(t, err)
		assert.True(t, IsProjectResolution(err))
	})
}

func TestResolveUnrecognized(t *testing.T) {
	r := newTestResolver("alice", nil)

	for _, in := range []string{"", "   ", "/scratch/other/location", "somefile.txt"} {
		_, err := r.Resolve(context.Background(), in)
		require.Error(t, err, "input %q", in)
		assert.True(t, IsUnrecognizedPath(err), "input %q", in)
	}
}

func TestResolveQualifiedPassthrough(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver("alice", nil)

	res, err := r.Resolve(ctx, "hpcs://some.system/already/resolved")
	require.NoError(t, err)
	assert.Equal(t, "some.system", res.SystemID)
	assert.Equal(t, "already/resolved", res.Path)

	// Even when the URI path contains an alias word, passthrough wins.
	res, err = r.Resolve(ctx, "hpcs://other.system/mydata/files")
	require.NoError(t, err)
	assert.Equal(t, "other.system", res.SystemID)
	assert.Equal(t, "mydata/files", res.Path)

	_, err = r.Resolve(ctx, "hpcs://")
	require.Error(t, err)
}

func TestResolveIdempotent(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver("alice", nil)

	first, err := r.ResolveURI(ctx, "/home/jupyter/MyData/runs/trial 1")
	require.NoError(t, err)

	second, err := r.ResolveURI(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	third, err := r.ResolveURI(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestEncodePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain/path", "plain/path"},
		{"with space/file name.txt", "with%20space/file%20name.txt"},
		// Already-encoded input is not double-encoded.
		{"with%20space/file%20name.txt", "with%20space/file%20name.txt"},
		{"100%/raw", "100%25/raw"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EncodePath(tc.in), "input %q", tc.in)
	}
}

func TestRawAndEncodedInputsResolveIdentically(t *testing.T) {
	ctx := context.Background()
	r := newTestResolver("alice", nil)

	raw, err := r.ResolveURI(ctx, "MyData/trial runs/case 7")
	require.NoError(t, err)

	encoded, err := r.ResolveURI(ctx, "MyData/trial%20runs/case%207")
	require.NoError(t, err)

	assert.Equal(t, raw, encoded)
}

func TestResolutionURI(t *testing.T) {
	res := Resolution{SystemID: "sys.one", Path: "a b/c"}
	assert.Equal(t, "hpcs://sys.one/a%20b/c", res.URI(""))
	assert.Equal(t, "grid://sys.one/a%20b/c", res.URI("grid"))
}

func TestConfigOverrides(t *testing.T) {
	r := NewResolver(Config{
		Scheme:            "grid",
		PersonalSystemID:  "my.personal",
		CommunitySystemID: "my.community",
		Identity:          "bob",
	}, nil, nil)
	ctx := context.Background()

	res, err := r.Resolve(ctx, "MyData/x")
	require.NoError(t, err)
	assert.Equal(t, "my.personal", res.SystemID)
	assert.Equal(t, "bob/x", res.Path)

	// Passthrough recognizes the configured scheme, not the default.
	res, err = r.Resolve(ctx, "grid://sys/x")
	require.NoError(t, err)
	assert.Equal(t, "sys", res.SystemID)

	_, err = r.Resolve(ctx, "hpcs://sys/x")
	require.Error(t, err)
}
