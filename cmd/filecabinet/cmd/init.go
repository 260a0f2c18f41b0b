/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a File Cabinet configuration file with default settings and a
generated API key for the REST server.

This command will:
- Create the configuration directory
- Write the configuration with secure permissions (0600)
- Generate the API key used by 'filecabinet serve'

Examples:
  filecabinet init
  filecabinet init --config ./filecabinet.yaml --data-file ./data/cabinet.db
  filecabinet init --validation-rules custom --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStoreAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataFile, _ := cmd.Flags().GetString("data-file")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
			return nil
		}

		cfg, err := initializeConfig(cmd, configPath, dataFile)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", configPath)
		cmd.Printf("Data file: %s\n", cfg.DataFile)
		cmd.Printf("Validation rules: %s\n", cfg.Validation.Rules)
		cmd.Printf("API key: %s\n", cfg.API.APIKey)
		cmd.Printf("\nYou can now start the shell with:\n  filecabinet --config %s\n", configPath)
		return nil
	},
}

// initializeConfig bootstraps the config file, applying a validation rules override
func initializeConfig(cmd *cobra.Command, configPath, dataFile string) (*config.Config, error) {
	if cmd.Flags().Changed("validation-rules") {
		rules, _ := cmd.Flags().GetString("validation-rules")
		if _, err := validation.RulesFor(rules); err != nil {
			return nil, err
		}
	}

	cfg, err := config.BootstrapConfig(configPath, dataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	if cmd.Flags().Changed("validation-rules") {
		cfg.Validation.Rules, _ = cmd.Flags().GetString("validation-rules")
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}
