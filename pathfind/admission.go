package pathfind

import (
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/gorustyt/gonavgraph/navgraph"
	"go.uber.org/zap"
)

// ScriptAdmission vets edges with a tengo script. The script sees the globals
// from and to (maps with name, id, x, y, z) and distance, and assigns the
// boolean admit. A script error rejects the edge.
//
//	admit = to.y - from.y < 1.5 && to.name != "ledge"
type ScriptAdmission struct {
	name     string
	compiled *tengo.Compiled
	logger   *zap.Logger
}

func LoadScriptAdmission(path string, logger *zap.Logger) (*ScriptAdmission, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pathfind: read admission script: %w", err)
	}
	return NewScriptAdmission(path, src, logger)
}

func NewScriptAdmission(name string, src []byte, logger *zap.Logger) (*ScriptAdmission, error) {
	if logger == nil {
		logger = zap.L()
	}
	script := tengo.NewScript(src)
	_ = script.Add("from", map[string]any{})
	_ = script.Add("to", map[string]any{})
	_ = script.Add("distance", 0.0)
	_ = script.Add("admit", true)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("pathfind: compile admission script %s: %w", name, err)
	}
	return &ScriptAdmission{name: name, compiled: compiled, logger: logger}, nil
}

// Clone returns an independent copy for use by another PathFinder.
func (s *ScriptAdmission) Clone() *ScriptAdmission {
	return &ScriptAdmission{name: s.name, compiled: s.compiled.Clone(), logger: s.logger}
}

func nodeObject(n *navgraph.NavNode) map[string]any {
	return map[string]any{
		"name": n.Name,
		"id":   n.ID,
		"x":    float64(n.Pos[0]),
		"y":    float64(n.Pos[1]),
		"z":    float64(n.Pos[2]),
	}
}

// Admit satisfies AdmissionFunc.
func (s *ScriptAdmission) Admit(from *navgraph.NavNode, e navgraph.NavEdge) bool {
	if err := s.run(from, e); err != nil {
		s.logger.Warn("pathfind: admission script failed",
			zap.String("script", s.name),
			zap.String("from", from.Name),
			zap.String("to", e.To.Name),
			zap.Error(err))
		return false
	}
	return s.compiled.Get("admit").Bool()
}

func (s *ScriptAdmission) run(from *navgraph.NavNode, e navgraph.NavEdge) error {
	if err := s.compiled.Set("from", nodeObject(from)); err != nil {
		return err
	}
	if err := s.compiled.Set("to", nodeObject(e.To)); err != nil {
		return err
	}
	if err := s.compiled.Set("distance", float64(e.Distance)); err != nil {
		return err
	}
	if err := s.compiled.Set("admit", true); err != nil {
		return err
	}
	return s.compiled.Run()
}
