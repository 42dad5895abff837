// Package pathmap translates user-facing storage paths into the gateway's
// addressing scheme.
//
// Users refer to storage with the conventions of their notebook or login
// environments ("jupyter/MyData/...", "/projects/PRJ-42/..."). The gateway
// addresses everything as scheme://<storage-system-id>/<path>. The resolver
// applies an ordered rule table to bridge the two, performing at most one
// remote lookup (project id to storage system).
package pathmap

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Default storage addressing used when Config fields are left empty.
const (
	DefaultScheme              = "hpcs"
	DefaultPersonalSystemID    = "hpcs.storage.default"
	DefaultCommunitySystemID   = "hpcs.storage.community"
	DefaultProjectSystemPrefix = "project-"
)

// Config configures a Resolver.
type Config struct {
	// Scheme is the URI scheme emitted and recognized for passthrough.
	Scheme string

	// PersonalSystemID is the storage system for personal data paths.
	PersonalSystemID string

	// CommunitySystemID is the storage system for shared data paths.
	CommunitySystemID string

	// ProjectSystemPrefix is the id prefix of project storage systems.
	ProjectSystemPrefix string

	// Identity is the authenticated username, prepended to personal paths.
	// Empty identity makes personal paths fail with ErrIdentityRequired.
	Identity string
}

func (c Config) withDefaults() Config {
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.PersonalSystemID == "" {
		c.PersonalSystemID = DefaultPersonalSystemID
	}
	if c.CommunitySystemID == "" {
		c.CommunitySystemID = DefaultCommunitySystemID
	}
	if c.ProjectSystemPrefix == "" {
		c.ProjectSystemPrefix = DefaultProjectSystemPrefix
	}
	return c
}

// Resolution is the outcome of resolving a user path.
//
// Path is stored in decoded form; URI applies percent-encoding exactly once.
type Resolution struct {
	// SystemID is the opaque storage-system identifier.
	SystemID string

	// Path is the decoded path relative to the system root.
	Path string

	// RequiresIdentity reports whether the matched rule needed the
	// caller's identity.
	RequiresIdentity bool
}

// URI renders the resolution in the gateway's addressing scheme.
func (r Resolution) URI(scheme string) string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return fmt.Sprintf("%s://%s/%s", scheme, r.SystemID, EncodePath(r.Path))
}

// Resolver maps user path conventions onto storage systems.
//
// Resolver is stateless apart from its configuration and is safe for
// concurrent use.
type Resolver struct {
	cfg     Config
	rules   []rule
	systems gridapi.SystemAPI
	logger  *zap.Logger
}

// NewResolver creates a resolver. systems may be nil if project paths are
// never resolved; resolving one without it returns ErrProjectResolution.
func NewResolver(cfg Config, systems gridapi.SystemAPI, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cfg:     cfg.withDefaults(),
		rules:   defaultRules,
		systems: systems,
		logger:  logger,
	}
}

// Resolve translates path into a Resolution.
//
// The rule table is evaluated in order and the first match wins. Inputs
// already carrying the configured scheme pass through unchanged, so the
// resolver is idempotent.
func (r *Resolver) Resolve(ctx context.Context, path string) (Resolution, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Resolution{}, fmt.Errorf("%w: empty path", ErrUnrecognizedPath)
	}

	// Fully qualified URIs pass through before alias matching so an encoded
	// path can never be re-matched against a substring rule.
	if strings.HasPrefix(path, r.cfg.Scheme+"://") {
		return r.parseQualified(path)
	}

	for _, rule := range r.rules {
		idx := strings.Index(path, rule.alias)
		if idx < 0 {
			continue
		}
		remainder := strings.TrimLeft(path[idx+len(rule.alias):], "/")
		switch rule.kind {
		case rulePersonal:
			return r.resolvePersonal(path, remainder)
		case ruleCommunity:
			return Resolution{SystemID: r.cfg.CommunitySystemID, Path: decodePath(remainder)}, nil
		case ruleProject:
			return r.resolveProject(ctx, path, remainder)
		}
	}

	return Resolution{}, fmt.Errorf("%w: %q", ErrUnrecognizedPath, path)
}

// ResolveURI is a convenience wrapper returning the rendered URI.
func (r *Resolver) ResolveURI(ctx context.Context, path string) (string, error) {
	res, err := r.Resolve(ctx, path)
	if err != nil {
		return "", err
	}
	return res.URI(r.cfg.Scheme), nil
}

func (r *Resolver) parseQualified(uri string) (Resolution, error) {
	rest := strings.TrimPrefix(uri, r.cfg.Scheme+"://")
	systemID, p, _ := strings.Cut(rest, "/")
	if systemID == "" {
		return Resolution{}, fmt.Errorf("%w: missing storage system in %q", ErrUnrecognizedPath, uri)
	}
	return Resolution{SystemID: systemID, Path: decodePath(p)}, nil
}

func (r *Resolver) resolvePersonal(path, remainder string) (Resolution, error) {
	if r.cfg.Identity == "" {
		return Resolution{}, fmt.Errorf("%w: personal path %q needs an authenticated identity", ErrIdentityRequired, path)
	}
	rel := r.cfg.Identity
	if remainder != "" {
		rel += "/" + decodePath(remainder)
	}
	return Resolution{SystemID: r.cfg.PersonalSystemID, Path: rel, RequiresIdentity: true}, nil
}

// resolveProject resolves the leading path segment of remainder to a
// project storage system via a single gateway lookup.
func (r *Resolver) resolveProject(ctx context.Context, path, remainder string) (Resolution, error) {
	if remainder == "" {
		return Resolution{}, fmt.Errorf("%w: project path %q is missing a project id", ErrProjectResolution, path)
	}
	projectID, rest, _ := strings.Cut(remainder, "/")
	if r.systems == nil {
		return Resolution{}, fmt.Errorf("%w: no system lookup configured for project %q", ErrProjectResolution, projectID)
	}

	systemID, err := r.lookupProjectSystem(ctx, projectID)
	if err != nil {
		return Resolution{}, err
	}

	r.logger.Debug("resolved project path",
		zap.String("project_id", projectID),
		zap.String("system_id", systemID))

	return Resolution{SystemID: systemID, Path: decodePath(rest)}, nil
}

func (r *Resolver) lookupProjectSystem(ctx context.Context, projectID string) (string, error) {
	candidates, err := r.systems.SearchSystems(ctx, projectID, r.cfg.ProjectSystemPrefix)
	if err != nil {
		return "", fmt.Errorf("search systems for project %q: %w", projectID, err)
	}

	matches := make([]string, 0, 1)
	needle := strings.ToLower(projectID)
	for _, sys := range candidates {
		if strings.Contains(strings.ToLower(sys.Description), needle) {
			matches = append(matches, sys.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		// A long hyphenated id may already be the storage-system token;
		// try a direct lookup before giving up.
		if looksLikeSystemToken(projectID) {
			direct := r.cfg.ProjectSystemPrefix + projectID
			if sys, derr := r.systems.GetSystem(ctx, direct); derr == nil {
				return sys.ID, nil
			}
		}
		return "", fmt.Errorf("%w: no storage system matches project %q", ErrProjectResolution, projectID)
	default:
		return "", fmt.Errorf("%w: project %q matches %d storage systems", ErrProjectResolution, projectID, len(matches))
	}
}

// looksLikeSystemToken reports whether id is structurally a direct
// storage-system token (long hyphenated identifier) rather than a
// human-facing project id.
func looksLikeSystemToken(id string) bool {
	return strings.Contains(id, "-") && len(id) > 30
}

// EncodePath percent-encodes each path segment exactly once, preserving
// separators. Already-encoded segments are not double-encoded.
func EncodePath(p string) string {
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(decodeSegment(seg))
	}
	return strings.Join(segs, "/")
}

// decodePath normalizes a path to its decoded form, segment by segment.
func decodePath(p string) string {
	if p == "" {
		return ""
	}
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = decodeSegment(seg)
	}
	return strings.Join(segs, "/")
}

// decodeSegment unescapes seg when it is valid percent-encoding; raw
// segments (including ones with a literal %) are returned unchanged.
func decodeSegment(seg string) string {
	dec, err := url.PathUnescape(seg)
	if err != nil {
		return seg
	}
	return dec
}
