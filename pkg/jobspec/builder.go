// Package jobspec builds gateway job requests from app templates.
//
// A build merges three sources in fixed precedence: caller overrides win
// over template defaults, and template-declared FIXED options always win
// over caller-supplied scheduler options. The output is a self-contained
// gridapi.JobRequest that marshals byte-identically for identical inputs
// and a fixed clock.
package jobspec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Default parameter slot names recognized across app templates.
var DefaultScriptParamNames = []string{"Input Script", "Main Script", "tclScript"}

const (
	// DefaultInputDirParamName is the logical name of the main input slot.
	DefaultInputDirParamName = "Input Directory"

	// DefaultAllocationParamName is the scheduler option carrying the
	// billing allocation.
	DefaultAllocationParamName = "Allocation"
)

// BuildInput carries everything a build needs besides the template itself.
type BuildInput struct {
	// AppID selects the app template. Required.
	AppID string

	// AppVersion selects a template version. Empty means latest.
	AppVersion string

	// InputURI is the resolved source URI of the main input directory.
	// Required.
	InputURI string

	// Script is the primary script filename within the input directory.
	// Required.
	Script string

	// Name overrides the generated job name.
	Name string

	// Description overrides the template description.
	Description string

	// Tags are attached verbatim.
	Tags []string

	// Resource overrides; nil inherits the template default.
	MaxMinutes   *int
	NodeCount    *int
	CoresPerNode *int
	MemoryMB     *int
	Queue        string

	// Allocation is a billing identifier added as a scheduler option
	// unless the template marks that option FIXED.
	Allocation string

	// Extra parameters appended verbatim after the built-in placements.
	ExtraFileInputs       []gridapi.FileInput
	ExtraAppArgs          []gridapi.AppArg
	ExtraEnvVars          []gridapi.EnvVar
	ExtraSchedulerOptions []gridapi.AppArg
}

func (in BuildInput) validate() error {
	if strings.TrimSpace(in.AppID) == "" {
		return fmt.Errorf("%w: app id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.InputURI) == "" {
		return fmt.Errorf("%w: input URI is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Script) == "" {
		return fmt.Errorf("%w: script filename is required", ErrInvalidInput)
	}
	return nil
}

// Options tunes builder behavior. The zero value is usable.
type Options struct {
	// ScriptParamNames are the accepted slot names for the script value,
	// checked against appArgs first, then envVariables.
	ScriptParamNames []string

	// InputDirParamName is the logical name of the main input slot.
	InputDirParamName string

	// AllocationParamName names the allocation scheduler option.
	AllocationParamName string

	// Now supplies the clock for generated job names. Defaults to
	// time.Now; tests inject a fixed clock for byte-identical output.
	Now func() time.Time

	// Logger receives fixed-option conflict warnings. Nil disables.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if len(o.ScriptParamNames) == 0 {
		o.ScriptParamNames = DefaultScriptParamNames
	}
	if o.InputDirParamName == "" {
		o.InputDirParamName = DefaultInputDirParamName
	}
	if o.AllocationParamName == "" {
		o.AllocationParamName = DefaultAllocationParamName
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Builder produces a submission request from a template and overrides.
type Builder interface {
	Build(ctx context.Context, apps gridapi.AppAPI, in BuildInput) (*gridapi.JobRequest, error)
}

// GenericBuilder is the default builder covering any app template.
type GenericBuilder struct {
	opts Options
}

// NewGenericBuilder creates a builder with the given options.
func NewGenericBuilder(opts Options) *GenericBuilder {
	return &GenericBuilder{opts: opts.withDefaults()}
}

// Build fetches the template and assembles a fully resolved job request.
func (b *GenericBuilder) Build(ctx context.Context, apps gridapi.AppAPI, in BuildInput) (*gridapi.JobRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tpl, err := apps.GetApp(ctx, in.AppID, in.AppVersion)
	if err != nil {
		if gridapi.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s (version %s): %v", ErrTemplateNotFound, in.AppID, versionOrLatest(in.AppVersion), err)
		}
		return nil, fmt.Errorf("fetch app template %s: %w", in.AppID, err)
	}

	return b.BuildFromTemplate(tpl, in)
}

// BuildFromTemplate assembles a request from an already fetched template.
func (b *GenericBuilder) BuildFromTemplate(tpl *gridapi.AppTemplate, in BuildInput) (*gridapi.JobRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	attrs := tpl.JobAttributes

	req := &gridapi.JobRequest{
		Name:                   b.jobName(tpl, in),
		AppID:                  tpl.ID,
		AppVersion:             tpl.Version,
		Description:            b.description(tpl, in),
		Tags:                   in.Tags,
		ExecSystemID:           attrs.ExecSystemID,
		ExecSystemLogicalQueue: firstNonEmpty(in.Queue, attrs.ExecSystemLogicalQueue),
		ArchiveSystemID:        attrs.ArchiveSystemID,
		ArchiveOnAppError:      attrs.ArchiveOnAppError,
		IsMPI:                  attrs.IsMPI,
		CmdPrefix:              attrs.CmdPrefix,
		NodeCount:              intOverride(in.NodeCount, attrs.NodeCount),
		CoresPerNode:           intOverride(in.CoresPerNode, attrs.CoresPerNode),
		MemoryMB:               intOverride(in.MemoryMB, attrs.MemoryMB),
		MaxMinutes:             intOverride(in.MaxMinutes, attrs.MaxMinutes),
	}

	req.FileInputs = b.fileInputs(attrs, in)

	params := &gridapi.ParameterSet{}
	if err := b.placeScript(tpl, in, params); err != nil {
		return nil, err
	}
	params.AppArgs = append(params.AppArgs, in.ExtraAppArgs...)
	params.EnvVariables = append(params.EnvVariables, in.ExtraEnvVars...)
	b.schedulerOptions(attrs, in, params)

	if !params.Empty() {
		req.ParameterSet = params
	}
	return req, nil
}

func (b *GenericBuilder) jobName(tpl *gridapi.AppTemplate, in BuildInput) string {
	if in.Name != "" {
		return in.Name
	}
	return fmt.Sprintf("%s-%s", tpl.ID, b.opts.Now().UTC().Format("20060102_150405"))
}

func (b *GenericBuilder) description(tpl *gridapi.AppTemplate, in BuildInput) string {
	if in.Description != "" {
		return in.Description
	}
	if tpl.Description != "" {
		return tpl.Description
	}
	return fmt.Sprintf("gostratus job for %s", tpl.ID)
}

// fileInputs attaches the main input under the template's declared slot,
// preserving any declared target path, then appends extras verbatim.
func (b *GenericBuilder) fileInputs(attrs gridapi.JobAttributes, in BuildInput) []gridapi.FileInput {
	main := gridapi.FileInput{
		Name:      b.opts.InputDirParamName,
		SourceURL: in.InputURI,
	}
	for _, decl := range attrs.FileInputs {
		if strings.EqualFold(decl.Name, b.opts.InputDirParamName) {
			main.TargetPath = decl.TargetPath
			main.AutoMountLocal = decl.AutoMountLocal
			break
		}
	}
	out := append([]gridapi.FileInput{main}, in.ExtraFileInputs...)
	return out
}

// placeScript puts the script value into the first accepted slot,
// preferring appArgs over envVariables.
func (b *GenericBuilder) placeScript(tpl *gridapi.AppTemplate, in BuildInput, params *gridapi.ParameterSet) error {
	decl := tpl.JobAttributes.ParameterSet

	for _, arg := range decl.AppArgs {
		if containsName(b.opts.ScriptParamNames, arg.Name) {
			params.AppArgs = append(params.AppArgs, gridapi.AppArg{Name: arg.Name, Arg: in.Script})
			return nil
		}
	}
	for _, env := range decl.EnvVariables {
		if containsName(b.opts.ScriptParamNames, env.Key) {
			params.EnvVariables = append(params.EnvVariables, gridapi.EnvVar{Key: env.Key, Value: in.Script})
			return nil
		}
	}
	return fmt.Errorf("%w: app %s accepts none of %v", ErrScriptPlacement, tpl.ID, b.opts.ScriptParamNames)
}

// schedulerOptions appends the allocation and extra options, dropping any
// that collide with a template-declared FIXED option. Collisions warn and
// drop rather than fail; the gateway would reject the override anyway.
func (b *GenericBuilder) schedulerOptions(attrs gridapi.JobAttributes, in BuildInput, params *gridapi.ParameterSet) {
	fixed := map[string]struct{}{}
	for _, opt := range attrs.ParameterSet.SchedulerOptions {
		if opt.Fixed() {
			fixed[opt.Name] = struct{}{}
		}
	}

	if in.Allocation != "" {
		if _, isFixed := fixed[b.opts.AllocationParamName]; isFixed {
			b.opts.Logger.Warn("allocation option is fixed by the app template; dropping override",
				zap.String("option", b.opts.AllocationParamName))
		} else {
			params.SchedulerOptions = append(params.SchedulerOptions, gridapi.AppArg{
				Name: b.opts.AllocationParamName,
				Arg:  "-A " + in.Allocation,
			})
		}
	}

	for _, opt := range in.ExtraSchedulerOptions {
		if _, isFixed := fixed[opt.Name]; isFixed {
			b.opts.Logger.Warn("scheduler option is fixed by the app template; dropping override",
				zap.String("option", opt.Name))
			continue
		}
		params.SchedulerOptions = append(params.SchedulerOptions, opt)
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func intOverride(override *int, def int) int {
	if override != nil {
		return *override
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func versionOrLatest(v string) string {
	if v == "" {
		return "latest"
	}
	return v
}
