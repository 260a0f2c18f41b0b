package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/filecabinet/pkg/generator"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// Options holds the generator flags
type Options struct {
	OutputType      string
	Output          string
	Amount          int
	StartID         int32
	ValidationRules string
	Seed            int64
	Yes             bool
}

var (
	options Options
	rootCmd *cobra.Command
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "generator",
		Short: "Generate random File Cabinet records",
		Long: `Generate random records that satisfy the selected validation rules
and write them as a CSV or XML file that 'filecabinet import' accepts.

Examples:
  generator --output-type csv --output ./records.csv --records-amount 1000
  generator -t xml -o ./records.xml -a 50 -i 101 --validation-rules custom`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate(options, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	rootCmd.Flags().StringVarP(&options.OutputType, "output-type", "t", snapshot.FormatCSV, "output format (csv or xml)")
	rootCmd.Flags().StringVarP(&options.Output, "output", "o", "", "output file (default RandomData.<output-type>)")
	rootCmd.Flags().IntVarP(&options.Amount, "records-amount", "a", generator.DefaultAmount, "number of records to generate")
	rootCmd.Flags().Int32VarP(&options.StartID, "start-id", "i", generator.DefaultStartID, "id of the first record")
	rootCmd.Flags().StringVarP(&options.ValidationRules, "validation-rules", "v", validation.PolicyDefault, "validation rules the records satisfy (default or custom)")
	rootCmd.Flags().Int64Var(&options.Seed, "seed", 0, "seed for reproducible heights, dates, salaries and grades (0 picks one)")
	rootCmd.Flags().BoolVarP(&options.Yes, "yes", "y", false, "overwrite an existing output file without asking")
}

// generate writes the records described by opts, asking on in before
// replacing an existing file
func generate(opts Options, in io.Reader, out io.Writer) error {
	format, err := snapshot.ParseFormat(opts.OutputType)
	if err != nil {
		return err
	}

	path := opts.Output
	if path == "" {
		path = "RandomData." + format
	}
	if !strings.EqualFold(filepath.Ext(path), "."+format) {
		return fmt.Errorf("output file %s should end with .%s", path, format)
	}

	policy, err := validation.ByName(opts.ValidationRules)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Yes {
		rewrite, err := confirm(in, out, fmt.Sprintf("File exists - rewrite %s [Y/n] ", path))
		if err != nil {
			return err
		}
		if !rewrite {
			return nil
		}
	}

	var genOpts []generator.Option
	if opts.Seed != 0 {
		genOpts = append(genOpts, generator.WithSeed(opts.Seed))
	}
	snap, err := generator.New(policy, genOpts...).Generate(opts.StartID, opts.Amount)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if format == snapshot.FormatCSV {
		err = snap.WriteCSV(file)
	} else {
		err = snap.WriteXML(file)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "%d records were written to %s.\n", snap.Len(), path)
	return nil
}

// confirm asks until the answer is y, n, yes or no
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}
