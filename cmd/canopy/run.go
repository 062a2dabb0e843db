package main

import (
	"log/slog"
	"os"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/config"
	"github.com/phanxgames/canopy/internal/logging"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a window and run the demo scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		watch, _ := cmd.Flags().GetBool("watch")
		script, _ := cmd.Flags().GetString("script")
		return runDemo(path, debug, watch, script)
	},
}

func init() {
	runCmd.Flags().Bool("debug", false, "enable debug mode (overrides the config file)")
	runCmd.Flags().Bool("watch", false, "reload the config file when it changes")
	runCmd.Flags().String("script", "", "YAML or JSON input script to play back")
	rootCmd.AddCommand(runCmd)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runDemo(path string, debug, watch bool, script string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	if debug {
		cfg.Pipeline.Debug = true
		cfg.Pipeline.LogLevel = "debug"
	}
	log := logging.New(cfg.LogLevel())

	d, err := newDemo(cfg, log)
	if err != nil {
		return err
	}

	if script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		runner, err := canopy.LoadTestScript(data)
		if err != nil {
			return err
		}
		d.pipeline.SetTestRunner(runner)
	}

	if watch && path != "" {
		w, err := config.Watch(path)
		if err != nil {
			return err
		}
		defer w.Close()
		d.watcher = w
		log.Info("watching config", slog.String("path", w.Path()))
	}

	return canopy.Run(d.pipeline, cfg.RunConfig())
}
