package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const paddingUnset = -1

const (
	DefaultBaseURL           = "http://127.0.0.1:5000"
	DefaultTimeout           = 30 * time.Second
	DefaultPanelPadding      = 1
	DefaultAnimationFrames   = 8
	DefaultAnimationInterval = 16 * time.Millisecond
)

// Duration is a time.Duration that reads and writes as "30s" in YAML.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// ServerConfig describes the backend serving the pause and report endpoints.
type ServerConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// UIConfig tunes panel rendering and the collapse animation.
type UIConfig struct {
	PanelPadding      int      `yaml:"panel_padding"`
	AnimationFrames   int      `yaml:"animation_frames"`
	AnimationInterval Duration `yaml:"animation_interval,omitempty"`
}

// TargetConfig declares one monitored target.
type TargetConfig struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name,omitempty"`
	Paused  bool     `yaml:"paused,omitempty"`
	Details []string `yaml:"details,omitempty"`
}

// InstanceConfig groups targets under one monitored environment.
type InstanceConfig struct {
	Name    string         `yaml:"name"`
	Targets []TargetConfig `yaml:"targets"`
}

// Dashboard is the parsed dashboard.yaml.
type Dashboard struct {
	Server    ServerConfig     `yaml:"server"`
	UI        UIConfig         `yaml:"ui"`
	Instances []InstanceConfig `yaml:"instances"`
}

// LoadDashboard reads and validates the dashboard file at path.
func LoadDashboard(path string) (*Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard config: %w", err)
	}

	// Unset padding must be told apart from an explicit 0.
	dashboard := Dashboard{UI: UIConfig{PanelPadding: paddingUnset}}
	if err := yaml.Unmarshal(data, &dashboard); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard config: %w", err)
	}

	dashboard.Server.BaseURL = expandEnvVars(dashboard.Server.BaseURL)
	dashboard.applyDefaults()

	if err := dashboard.Validate(); err != nil {
		return nil, err
	}

	return &dashboard, nil
}

// SaveDashboard writes the dashboard file to path.
func SaveDashboard(path string, dashboard *Dashboard) error {
	data, err := yaml.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dashboard config: %w", err)
	}

	return nil
}

func (d *Dashboard) applyDefaults() {
	if d.Server.BaseURL == "" {
		d.Server.BaseURL = DefaultBaseURL
	}
	if d.Server.Timeout <= 0 {
		d.Server.Timeout = Duration(DefaultTimeout)
	}
	if d.UI.PanelPadding < 0 {
		d.UI.PanelPadding = DefaultPanelPadding
	}
	if d.UI.AnimationFrames <= 0 {
		d.UI.AnimationFrames = DefaultAnimationFrames
	}
	if d.UI.AnimationInterval <= 0 {
		d.UI.AnimationInterval = Duration(DefaultAnimationInterval)
	}
}

// Validate checks the base URL and that target ids are unique across all
// instances, since panel state is keyed by target id alone.
func (d *Dashboard) Validate() error {
	if err := ValidateBaseURL(d.Server.BaseURL); err != nil {
		return err
	}

	seen := make(map[string]string)
	for _, inst := range d.Instances {
		if strings.TrimSpace(inst.Name) == "" {
			return errors.New("instance name cannot be empty")
		}
		for _, target := range inst.Targets {
			if strings.TrimSpace(target.ID) == "" {
				return fmt.Errorf("instance %q has a target without an id", inst.Name)
			}
			if owner, dup := seen[target.ID]; dup {
				return fmt.Errorf("target id %q is declared by both %q and %q", target.ID, owner, inst.Name)
			}
			seen[target.ID] = inst.Name
		}
	}
	return nil
}

// Timeout returns the HTTP timeout for remote calls.
func (d *Dashboard) Timeout() time.Duration {
	return time.Duration(d.Server.Timeout)
}

// AnimationInterval returns the delay between collapse animation frames.
func (d *Dashboard) AnimationInterval() time.Duration {
	return time.Duration(d.UI.AnimationInterval)
}

// FindTarget returns the instance owning targetID and the target itself.
func (d *Dashboard) FindTarget(targetID string) (string, *TargetConfig, error) {
	for i := range d.Instances {
		inst := &d.Instances[i]
		for j := range inst.Targets {
			if inst.Targets[j].ID == targetID {
				return inst.Name, &inst.Targets[j], nil
			}
		}
	}
	return "", nil, fmt.Errorf("target '%s' not found", targetID)
}

// expandEnvVars expands environment variables in the format ${VAR_NAME}
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}

	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}

// ValidateBaseURL requires an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must start with 'http://' or 'https://', got: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base url has no host: %s", raw)
	}

	return nil
}
