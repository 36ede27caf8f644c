package main

import (
	"flag"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/model"
	"github.com/piwi3910/sawfit/internal/project"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "sawfit",
	Short:        "Place rectangular pieces on a board with saw kerf",
	SilenceUsage: true,
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", project.DefaultConfigPath(), "Path to the sawfit config file")
}

// loadConfig reads the app config, falling back to defaults when the file
// is missing.
func loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(configPath)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
