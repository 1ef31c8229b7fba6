// Package level loads navigation nodes and obstacle boxes from YAML.
package level

import (
	"errors"
	"fmt"
	"os"

	"github.com/gorustyt/gonavgraph/collision"
	"github.com/gorustyt/gonavgraph/common"
	"github.com/gorustyt/gonavgraph/navgraph"
	"gopkg.in/yaml.v3"
)

type Node struct {
	Name string     `yaml:"name"`
	ID   int        `yaml:"id"`
	Pos  [3]float32 `yaml:"pos"`
}

type Obstacle struct {
	Name      string     `yaml:"name"`
	Min       [3]float32 `yaml:"min"`
	Max       [3]float32 `yaml:"max"`
	Kind      string     `yaml:"kind"`
	Character *bool      `yaml:"character"`
}

type Level struct {
	Name      string     `yaml:"name"`
	Nodes     []Node     `yaml:"nodes"`
	Obstacles []Obstacle `yaml:"obstacles"`
}

func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: load %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level: %s: %w", path, err)
	}
	return lvl, nil
}

func Parse(data []byte) (*Level, error) {
	lvl := &Level{}
	if err := yaml.Unmarshal(data, lvl); err != nil {
		return nil, err
	}
	return lvl, nil
}

func parseKind(s string) (navgraph.BodyKind, error) {
	switch s {
	case "", "static":
		return navgraph.BodyStatic, nil
	case "dynamic":
		return navgraph.BodyDynamic, nil
	case "volatile":
		return navgraph.BodyVolatile, nil
	}
	return 0, fmt.Errorf("unknown obstacle kind %q", s)
}

// Populate reserves room for every node and registers them in file order.
// Registration failures are collected and returned together.
func (l *Level) Populate(g *navgraph.Graph) error {
	if err := g.Reserve(len(l.Nodes)); err != nil {
		return err
	}
	var errs []error
	for _, n := range l.Nodes {
		if !common.Visfinite(common.Vec3(n.Pos)) {
			errs = append(errs, fmt.Errorf("node %q: position %v is not finite", n.Name, n.Pos))
			continue
		}
		if _, err := g.Register(n.Name, n.ID, common.Vec3(n.Pos), n); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.Name, err))
		}
	}
	return errors.Join(errs...)
}

// World builds the collision world for the obstacles. Obstacles block
// characters unless they set character: false.
func (l *Level) World() (*collision.World, error) {
	w := collision.NewWorld()
	for _, o := range l.Obstacles {
		kind, err := parseKind(o.Kind)
		if err != nil {
			return nil, fmt.Errorf("obstacle %q: %w", o.Name, err)
		}
		character := o.Character == nil || *o.Character
		w.AddBox(o.Name, common.Vec3(o.Min), common.Vec3(o.Max), kind, character)
	}
	return w, nil
}
