/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"github.com/ssargent/filecabinet/pkg/api"
	"github.com/ssargent/filecabinet/pkg/config"
)

// autoAPIKey asks serve to generate a key for this run
const autoAPIKey = "auto"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the File Cabinet REST API server. Every route under /api/v1
requires the X-API-Key header; /metrics serves Prometheus metrics.

When the configured API key is "auto" a key is generated for this run and
printed once.

Examples:
  filecabinet serve --api-key=mysecretkey --port=8080
  filecabinet serve --bind 0.0.0.0 --data-file ./data/cabinet.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.GetConfig()

		serverConfig := api.ServerConfig{
			Port:   cfg.API.Port,
			Bind:   cfg.API.Bind,
			APIKey: cfg.API.APIKey,
		}
		if cmd.Flags().Changed("port") {
			serverConfig.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			serverConfig.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			serverConfig.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		if serverConfig.APIKey == "" || serverConfig.APIKey == autoAPIKey {
			key, err := config.GenerateSecureKey(32)
			if err != nil {
				return err
			}
			serverConfig.APIKey = key
			cmd.Printf("Generated API key for this run: %s\n", key)
		}

		cmd.Printf("Starting File Cabinet API on %s:%d\n", serverConfig.Bind, serverConfig.Port)
		cmd.Printf("Data file: %s (%s validation rules)\n", cfg.DataFile, container.GetPolicy().Name())

		starter := container.GetServerFactory().CreateServerStarter()
		if err := starter.StartServer(cmd.Context(), container.GetEngine(), serverConfig,
			container.GetMetrics(), container.GetRegistry(),
			log.With(container.GetLogger(), "component", "api")); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to (overrides config)")
	serveCmd.Flags().String("api-key", "", "API key for client authentication (overrides config)")
}
