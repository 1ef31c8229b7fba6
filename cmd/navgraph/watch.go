package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gorustyt/gonavgraph/navgraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func WatchCmd() *cobra.Command {
	var levelFile, cacheFile string
	c := &cobra.Command{
		Use:   "watch",
		Short: "reload a cache file whenever it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			reload := func() (*navgraph.Graph, error) {
				g, err := loadGraph(cfg, levelFile, logger)
				if err != nil {
					return nil, err
				}
				return g, g.LoadFromFile(cacheFile)
			}
			if _, err := reload(); err != nil {
				return err
			}

			w, err := navgraph.NewCacheWatcher(cacheFile)
			if err != nil {
				return err
			}
			defer w.Close()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			logger.Info("navgraph: watching cache", zap.String("cache", cacheFile))
			for {
				select {
				case path := <-w.Events:
					g, err := reload()
					if err != nil {
						logger.Error("navgraph: reload failed", zap.String("cache", path), zap.Error(err))
						continue
					}
					logger.Info("navgraph: reloaded",
						zap.String("cache", path),
						zap.Int("nodes", g.Len()),
						zap.Int("components", g.Components()))
				case err := <-w.Errors:
					logger.Warn("navgraph: watcher error", zap.Error(err))
				case s := <-sig:
					logger.Info("navgraph: exit", zap.String("signal", s.String()))
					return nil
				}
			}
		},
	}
	c.Flags().StringVar(&levelFile, "level", "level.yaml", "level file")
	c.Flags().StringVar(&cacheFile, "cache", "navgraph.xml", "cache file to watch")
	return c
}
