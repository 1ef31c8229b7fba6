package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gorustyt/gonavgraph/common"
	"github.com/gorustyt/gonavgraph/config"
	"github.com/gorustyt/gonavgraph/level"
	"github.com/gorustyt/gonavgraph/navgraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setup loads the config named by --config and installs the global logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := common.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

// loadGraph builds an empty graph for the level with its obstacles, minus the
// named ones, and registers every node. The caller compiles it or loads a cache.
func loadGraph(cfg *config.Config, levelPath string, logger *zap.Logger, without ...string) (*navgraph.Graph, error) {
	lvl, err := level.Load(levelPath)
	if err != nil {
		return nil, err
	}
	world, err := lvl.World()
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", levelPath, err)
	}
	for _, name := range without {
		removed := false
		for _, b := range world.Bodies() {
			if b.Name == name {
				world.Remove(b)
				removed = true
				break
			}
		}
		if !removed {
			return nil, fmt.Errorf("level %s: no obstacle %q", levelPath, name)
		}
	}
	g := navgraph.New(
		navgraph.WithParams(cfg.Compile.Params()),
		navgraph.WithProfile(cfg.Agent.Profile()),
		navgraph.WithRayCaster(world),
		navgraph.WithLogger(logger),
	)
	if err := lvl.Populate(g); err != nil {
		logger.Warn("level: some nodes were not registered", zap.String("level", levelPath), zap.Error(err))
	}
	return g, nil
}

func parseVec3(s string) (common.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return common.Vec3{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var v common.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return common.Vec3{}, fmt.Errorf("point %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
