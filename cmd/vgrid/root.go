package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/visiongrid/visiongrid-client/pkg/client"
	"github.com/visiongrid/visiongrid-client/pkg/logging"
)

// cliConfig is the on-disk CLI configuration, ~/.visiongrid/config.toml.
type cliConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	RedisAddr string `toml:"redis_addr"`
	LogLevel  string `toml:"log_level"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		BaseURL:   client.DefaultBaseURL,
		UserAgent: "vgrid-cli",
		LogLevel:  "warn",
	}
}

// configPath returns ~/.visiongrid/config.toml.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".visiongrid", "config.toml"), nil
}

// loadCLIConfig reads the config file, falling back to defaults when it
// does not exist.
func loadCLIConfig() (cliConfig, error) {
	cfg := defaultCLIConfig()

	path, err := configPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// newClient builds a platform client from the CLI configuration.
func newClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: true,
		Output: os.Stderr,
	})

	clientCfg := client.DefaultConfig()
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.HTTPTimeout = 5 * time.Minute

	if cfg.RedisAddr != "" {
		clientCfg.Redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	return client.New(clientCfg)
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vgrid",
		Short:         "Interact with the VisionGrid platform",
		Long:          "vgrid uploads media, manages processing jobs, and queries resources on the VisionGrid platform.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newAuthCmd(),
		newAnalyticsCmd(),
		newDataCmd(),
		newJobsCmd(),
		newStatusCmd(),
	)

	return root
}
