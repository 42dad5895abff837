package jobspec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/3leaps/gostratus/pkg/gridapi"
)

// Manifest is a declarative job submission, loadable from YAML or JSON.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	app:
//	  id: opensees-express
//	input:
//	  path: jupyter/MyData/examples/truss
//	  script: model.tcl
//	job:
//	  max_minutes: 60
//	  queue: development
//	  allocation: ABC-123
type Manifest struct {
	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// App selects the application template.
	App AppSelector `json:"app" yaml:"app"`

	// Input names the main input directory and script.
	Input InputConfig `json:"input" yaml:"input"`

	// Job carries optional overrides (optional).
	Job JobConfig `json:"job,omitempty" yaml:"job,omitempty"`

	// Parameters carries extra verbatim parameters (optional).
	Parameters ParameterConfig `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// AppSelector identifies the application template.
type AppSelector struct {
	// ID is the app id. Required.
	ID string `json:"id" yaml:"id"`

	// Version selects a template version. Empty means latest.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// InputConfig names the main input.
type InputConfig struct {
	// Path is a user-facing storage path, resolved via pathmap before
	// submission. Required.
	Path string `json:"path" yaml:"path"`

	// Script is the primary script filename within Path. Required.
	Script string `json:"script" yaml:"script"`
}

// JobConfig carries the optional per-job overrides.
type JobConfig struct {
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	MaxMinutes   *int     `json:"max_minutes,omitempty" yaml:"max_minutes,omitempty"`
	NodeCount    *int     `json:"node_count,omitempty" yaml:"node_count,omitempty"`
	CoresPerNode *int     `json:"cores_per_node,omitempty" yaml:"cores_per_node,omitempty"`
	MemoryMB     *int     `json:"memory_mb,omitempty" yaml:"memory_mb,omitempty"`
	Queue        string   `json:"queue,omitempty" yaml:"queue,omitempty"`
	Allocation   string   `json:"allocation,omitempty" yaml:"allocation,omitempty"`
}

// ParameterConfig carries extra parameters appended verbatim.
type ParameterConfig struct {
	FileInputs       []gridapi.FileInput `json:"file_inputs,omitempty" yaml:"file_inputs,omitempty"`
	AppArgs          []gridapi.AppArg    `json:"app_args,omitempty" yaml:"app_args,omitempty"`
	EnvVariables     []gridapi.EnvVar    `json:"env_variables,omitempty" yaml:"env_variables,omitempty"`
	SchedulerOptions []gridapi.AppArg    `json:"scheduler_options,omitempty" yaml:"scheduler_options,omitempty"`
}

// DefaultManifestVersion is the current manifest schema version.
const DefaultManifestVersion = "1.0"

// LoadManifest reads and validates a manifest from the given file path.
//
// The format is determined by extension: .yaml/.yml for YAML, .json for
// JSON. Unrecognized extensions try YAML first, then JSON.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", path)
		}
		return nil, fmt.Errorf("read manifest file: %w", err)
	}
	return LoadManifestFromBytes(data, path)
}

// LoadManifestFromBytes parses and validates a manifest from raw bytes.
// The path parameter is used for format detection and error messages.
func LoadManifestFromBytes(data []byte, path string) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest file is empty")
	}

	m, err := parseManifest(data, path)
	if err != nil {
		return nil, err
	}
	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseManifest(data []byte, path string) (*Manifest, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return parseJSON(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		m, yamlErr := parseYAML(data)
		if yamlErr == nil {
			return m, nil
		}
		if m, jsonErr := parseJSON(data); jsonErr == nil {
			return m, nil
		}
		return nil, fmt.Errorf("parse manifest (tried YAML and JSON): %w", yamlErr)
	}
}

func parseJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON in manifest: %w", err)
	}
	return &m, nil
}

func parseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML in manifest: %w", err)
	}
	return &m, nil
}

// ApplyDefaults fills in default values for optional fields.
func (m *Manifest) ApplyDefaults() {
	if m.Version == "" {
		m.Version = DefaultManifestVersion
	}
}

// Validate checks the manifest for structural completeness.
func (m *Manifest) Validate() error {
	if m.Version != DefaultManifestVersion {
		return fmt.Errorf("unsupported manifest version %q (want %q)", m.Version, DefaultManifestVersion)
	}
	if strings.TrimSpace(m.App.ID) == "" {
		return fmt.Errorf("manifest: app.id is required")
	}
	if strings.TrimSpace(m.Input.Path) == "" {
		return fmt.Errorf("manifest: input.path is required")
	}
	if strings.TrimSpace(m.Input.Script) == "" {
		return fmt.Errorf("manifest: input.script is required")
	}
	return nil
}

// BuildInput converts the manifest into a BuildInput. inputURI is the
// already-resolved source URI for Input.Path.
func (m *Manifest) BuildInput(inputURI string) BuildInput {
	return BuildInput{
		AppID:                 m.App.ID,
		AppVersion:            m.App.Version,
		InputURI:              inputURI,
		Script:                m.Input.Script,
		Name:                  m.Job.Name,
		Description:           m.Job.Description,
		Tags:                  m.Job.Tags,
		MaxMinutes:            m.Job.MaxMinutes,
		NodeCount:             m.Job.NodeCount,
		CoresPerNode:          m.Job.CoresPerNode,
		MemoryMB:              m.Job.MemoryMB,
		Queue:                 m.Job.Queue,
		Allocation:            m.Job.Allocation,
		ExtraFileInputs:       m.Parameters.FileInputs,
		ExtraAppArgs:          m.Parameters.AppArgs,
		ExtraEnvVars:          m.Parameters.EnvVariables,
		ExtraSchedulerOptions: m.Parameters.SchedulerOptions,
	}
}
