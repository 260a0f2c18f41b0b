/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/shell"
	"github.com/ssargent/filecabinet/pkg/store"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive shell",
	Long: `Start the interactive command loop. Type 'help' inside the shell for
the list of commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

// statCmd represents the stat command
var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show the number of records and index statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellCommand(cmd, "stat")
	},
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellCommand(cmd, "list")
	},
}

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find <firstname|lastname|dateofbirth> <value>",
	Short: "Find records by first name, last name or date of birth",
	Long: `Find records by first name, last name or date of birth. Name lookups
ignore case. Dates are accepted as mm/dd/yyyy or yyyy-mm-dd.

Examples:
  filecabinet find firstname ann
  filecabinet find lastname "van Dyke"
  filecabinet find dateofbirth 05/02/1990`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellCommand(cmd, append([]string{"find"}, args...)...)
	},
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a record by id",
	Long: `Get a record by id from the record file.

Example:
  filecabinet get 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid record id %q", args[0])
		}

		record, err := container.GetEngine().GetRecord(int32(id))
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("#%d record is not found", id)
		}
		if err != nil {
			return err
		}

		if container.GetConfig().Output.Format == config.OutputJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(shell.NewRecordView(*record))
		}
		fmt.Fprintln(cmd.OutOrStdout(), shell.FormatRecord(*record))
		return nil
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <csv|xml> <path>",
	Short: "Export all records to a CSV or XML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellCommand(cmd, "export", args[0], args[1])
	},
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <csv|xml> <path>",
	Short: "Import records from a CSV or XML file",
	Long: `Import records from a CSV or XML file. A record whose id already
exists replaces the stored record; any other record is created with a
new id. Records that fail validation are skipped and reported.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellCommand(cmd, "import", args[0], args[1])
	},
}

// shellCommand runs one shell command line against the opened store
func shellCommand(cmd *cobra.Command, words ...string) error {
	return newShell(cmd).Execute(shellquote.Join(words...))
}

func init() {
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
