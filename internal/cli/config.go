package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/branchtabs/internal/config"
)

var configForce bool

// configCmd groups the config subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialise config.yaml",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]interface{}{
				"path":    paths.Config,
				"expiry":  cfg.Expiry.String(),
				"backend": cfg.Backend,
				"log":     cfg.Log,
			})
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		PrintSection(fmt.Sprintf("Config: %s", paths.Config))
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get config paths: %w", err)
		}
		if err := paths.EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to ensure directories: %w", err)
		}

		if _, err := os.Stat(paths.Config); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", paths.Config)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat config: %w", err)
		}

		if err := config.Default().Save(paths.Config); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]string{"path": paths.Config})
		}
		PrintSuccess(fmt.Sprintf("Wrote %s", paths.Config))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
