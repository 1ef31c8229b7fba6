package main

import (
	"fmt"

	"github.com/gorustyt/gonavgraph/navgraph"
	"github.com/gorustyt/gonavgraph/pathfind"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func PathCmd() *cobra.Command {
	var levelFile, cacheFile, from, to string
	var without []string
	c := &cobra.Command{
		Use:   "path",
		Short: "find a path between two points",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			start, err := parseVec3(from)
			if err != nil {
				return err
			}
			goal, err := parseVec3(to)
			if err != nil {
				return err
			}
			g, err := loadGraph(cfg, levelFile, logger, without...)
			if err != nil {
				return err
			}
			if cacheFile != "" {
				err = g.LoadFromFile(cacheFile)
			} else {
				err = g.Compile()
			}
			if err != nil {
				return err
			}

			pf := pathfind.New(g,
				pathfind.WithMaxIterations(cfg.Search.MaxIterations),
				pathfind.WithLogger(logger))
			if cfg.Search.AdmissionScript != "" {
				s, err := pathfind.LoadScriptAdmission(cfg.Search.AdmissionScript, logger)
				if err != nil {
					return err
				}
				pf.SetAdmissionCallback(s.Admit)
			}
			path, ok := pf.GetPath(start, goal, nil)
			if !ok {
				return fmt.Errorf("no path from %s to %s after %d iterations", from, to, pf.Iterations())
			}
			printPath(cmd, path)
			logger.Debug("pathfind: path found", zap.Int("nodes", len(path)), zap.Int("iterations", pf.Iterations()))
			return nil
		},
	}
	c.Flags().StringVar(&levelFile, "level", "level.yaml", "level file")
	c.Flags().StringVar(&cacheFile, "cache", "", "compiled cache file; compiles the level when empty")
	c.Flags().StringVar(&from, "from", "", "start point x,y,z")
	c.Flags().StringVar(&to, "to", "", "goal point x,y,z")
	c.Flags().StringSliceVar(&without, "without", nil, "obstacles to leave out, e.g. opened doors")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}

// printPath writes the route start first.
func printPath(cmd *cobra.Command, path []*navgraph.NavNode) {
	out := cmd.OutOrStdout()
	if len(path) == 0 {
		fmt.Fprintln(out, "direct")
		return
	}
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		fmt.Fprintf(out, "%s\t%d\t%.2f,%.2f,%.2f\n", n.Name, n.ID, n.Pos[0], n.Pos[1], n.Pos[2])
	}
}
