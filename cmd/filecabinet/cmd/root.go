/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/ssargent/filecabinet/pkg/api"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/di"
	"github.com/ssargent/filecabinet/pkg/shell"
)

// skipStoreAnnotation marks commands that run without opening the data file
const skipStoreAnnotation = "filecabinet/skip-store"

var (
	container     *di.Container
	serverFactory api.ServerFactory
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "filecabinet",
	Short: "File Cabinet - personal record storage",
	Long: `File Cabinet stores personal records (name, date of birth, height,
salary, grade) in a single fixed-length record file with in-memory
indexes for searching by first name, last name and date of birth.

Run without a subcommand to start the interactive shell.

Examples:
  filecabinet
  filecabinet --validation-rules custom --data-file ./data/people.db
  filecabinet find lastname Lee
  filecabinet export csv ./records.csv`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipStoreAnnotation] == "true" {
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		c, err := di.NewContainer(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if serverFactory != nil {
			c.SetServerFactory(serverFactory)
		}

		result, err := c.GetEngine().Open()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		level.Debug(c.GetLogger()).Log("msg", "store opened", "records", result.Records,
			"next_id", result.NextID, "scan_time", time.Duration(result.ScanTime))

		container = c
		return nil
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree and always releases the store afterwards
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	defer closeContainer()
	return rootCmd.ExecuteContext(ctx)
}

// SetServerFactory overrides the server factory used by serve (for testing)
func SetServerFactory(factory api.ServerFactory) {
	serverFactory = factory
}

func closeContainer() {
	if container == nil {
		return
	}
	if err := container.Close(); err != nil {
		level.Error(container.GetLogger()).Log("msg", "failed to close store", "err", err)
	}
	container = nil
}

// loadConfig reads the config file if one exists and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		var err error
		if cfg, err = config.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("data-file") {
		cfg.DataFile, _ = flags.GetString("data-file")
	}
	if flags.Changed("validation-rules") {
		cfg.Validation.Rules, _ = flags.GetString("validation-rules")
	}
	if flags.Changed("format") {
		format, _ := flags.GetString("format")
		cfg.Output.Format = strings.ToLower(format)
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("sync-writes") {
		cfg.Storage.SyncWrites, _ = flags.GetBool("sync-writes")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newShell builds a shell over the opened store wired to the command's streams
func newShell(cmd *cobra.Command) *shell.Shell {
	return shell.New(container.GetEngine(), container.GetPolicy(),
		shell.WithInput(cmd.InOrStdin()),
		shell.WithOutput(cmd.OutOrStdout()),
		shell.WithFormat(container.GetConfig().Output.Format),
		shell.WithLogger(log.With(container.GetLogger(), "component", "shell")))
}

func runShell(cmd *cobra.Command, args []string) error {
	return newShell(cmd).Run(cmd.Context())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/filecabinet/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-file", "d", "", "Path to the record file (overrides config)")
	rootCmd.PersistentFlags().StringP("validation-rules", "v", "", "Validation rules: default or custom (overrides config)")
	rootCmd.PersistentFlags().StringP("format", "o", "", "Output format: table or json (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().Bool("sync-writes", false, "Fsync the record file after every write (overrides config)")
}
