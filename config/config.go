package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/gorustyt/gonavgraph/common"
	"github.com/gorustyt/gonavgraph/navgraph"
	"gopkg.in/yaml.v3"
)

type Agent struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
	Rays   int     `yaml:"rays"`
}

func (a Agent) Profile() navgraph.Profile {
	return navgraph.Profile{Width: a.Width, Height: a.Height, Rays: a.Rays}
}

type Compile struct {
	MaxEdges        int     `yaml:"max_edges"`
	MinEdges        int     `yaml:"min_edges"`
	MaxEdgeDistance float32 `yaml:"max_edge_distance"`
	MaxHeight       float32 `yaml:"max_height"`
	NodesPerCell    float32 `yaml:"nodes_per_cell"`
}

func (c Compile) Params() navgraph.Params {
	return navgraph.Params{
		MaxEdges:        c.MaxEdges,
		MinEdges:        c.MinEdges,
		MaxEdgeDistance: c.MaxEdgeDistance,
		MaxHeight:       c.MaxHeight,
		NodesPerCell:    c.NodesPerCell,
	}
}

type Search struct {
	MaxIterations   int    `yaml:"max_iterations"`
	AdmissionScript string `yaml:"admission_script"`
}

type Config struct {
	Log     common.LogConfig `yaml:"log"`
	Agent   Agent            `yaml:"agent"`
	Compile Compile          `yaml:"compile"`
	Search  Search           `yaml:"search"`
}

func Default() *Config {
	p := navgraph.DefaultProfile()
	params := navgraph.DefaultParams()
	return &Config{
		Log: common.LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Agent: Agent{Width: p.Width, Height: p.Height, Rays: p.Rays},
		Compile: Compile{
			MaxEdges:        params.MaxEdges,
			MinEdges:        params.MinEdges,
			MaxEdgeDistance: params.MaxEdgeDistance,
			MaxHeight:       params.MaxHeight,
			NodesPerCell:    params.NodesPerCell,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Agent.Width < 0 || c.Agent.Height < 0 {
		errs = append(errs, errors.New("agent size must not be negative"))
	}
	if c.Agent.Rays < 0 || c.Agent.Rays > navgraph.MaxRays {
		errs = append(errs, fmt.Errorf("agent rays must be within 0..%d", navgraph.MaxRays))
	}
	if c.Compile.MaxEdges <= 0 {
		errs = append(errs, errors.New("compile max_edges must be positive"))
	}
	if c.Compile.MinEdges < 0 || c.Compile.MinEdges > c.Compile.MaxEdges {
		errs = append(errs, errors.New("compile min_edges must be within 0..max_edges"))
	}
	if c.Compile.MaxEdgeDistance <= 0 {
		errs = append(errs, errors.New("compile max_edge_distance must be positive"))
	}
	if c.Compile.MaxHeight < 0 {
		errs = append(errs, errors.New("compile max_height must not be negative"))
	}
	if c.Compile.NodesPerCell <= 0 {
		errs = append(errs, errors.New("compile nodes_per_cell must be positive"))
	}
	if c.Search.MaxIterations < 0 {
		errs = append(errs, errors.New("search max_iterations must not be negative"))
	}
	if _, err := common.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
