package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func CompileCmd() *cobra.Command {
	var levelFile, outFile string
	c := &cobra.Command{
		Use:   "compile",
		Short: "compile a level's navigation graph into a cache file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			g, err := loadGraph(cfg, levelFile, logger)
			if err != nil {
				return err
			}
			if err := g.Compile(); err != nil {
				return err
			}
			if err := g.SaveToFile(outFile); err != nil {
				return err
			}
			logger.Info("navgraph: cache written",
				zap.String("out", outFile),
				zap.Int("nodes", g.Len()),
				zap.Int("components", g.Components()))
			return nil
		},
	}
	c.Flags().StringVar(&levelFile, "level", "level.yaml", "level file")
	c.Flags().StringVar(&outFile, "out", "navgraph.xml", "cache file (.bin for the binary codec)")
	return c
}
