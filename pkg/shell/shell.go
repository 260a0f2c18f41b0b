// Package shell implements the interactive command loop over the record engine.
//
// Each input line is split with shell quoting rules, so values containing
// spaces can be quoted:
//
//	> find lastname "van Dyke"
//	> export csv "/tmp/my records.csv"
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/kballard/go-shellquote"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/store"
	"github.com/ssargent/filecabinet/pkg/validation"
)

const hintMessage = "Enter your command, or enter 'help' to get help."

// RecordStore is the subset of the engine the shell drives
type RecordStore interface {
	CreateRecord(f codec.Fields) (int32, error)
	EditRecord(id int32, f codec.Fields) error
	GetRecord(id int32) (*codec.Record, error)
	GetRecords() ([]codec.Record, error)
	FindByFirstName(name string) ([]codec.Record, error)
	FindByLastName(name string) ([]codec.Record, error)
	FindByDate(date string) ([]codec.Record, error)
	GetStat() int
	Snapshot() (*snapshot.Snapshot, error)
	Restore(s *snapshot.Snapshot) (*store.RestoreResult, error)
	Stats() *store.StoreStats
}

// Shell reads commands from an input stream and writes results to an output
// stream. It is not safe for concurrent use.
type Shell struct {
	records RecordStore
	policy  *validation.Policy
	in      *bufio.Reader
	out     io.Writer
	format  string
	logger  log.Logger
	running bool
}

// Option configures a Shell
type Option func(*Shell)

// WithInput sets the command source. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(s *Shell) {
		s.in = bufio.NewReader(r)
	}
}

// WithOutput sets the destination for prompts and results. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		s.out = w
	}
}

// WithFormat selects table or json output for stat, list and find
func WithFormat(format string) Option {
	return func(s *Shell) {
		s.format = strings.ToLower(format)
	}
}

// WithLogger sets the shell logger
func WithLogger(logger log.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// New creates a shell over records. The policy drives per-field re-prompting.
func New(records RecordStore, policy *validation.Policy, opts ...Option) *Shell {
	s := &Shell{
		records: records,
		policy:  policy,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		format:  config.OutputTable,
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run prints the banner and processes commands until exit, end of input or
// cancellation of ctx
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "File Cabinet Application")
	fmt.Fprintf(s.out, "Using %s validation rules.\n", s.policy.Name())
	fmt.Fprintln(s.out, hintMessage)
	fmt.Fprintln(s.out)

	s.running = true
	for s.running {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, "> ")
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		fmt.Fprintln(s.out)
	}
	return nil
}

// Execute runs a single command line. Command failures are reported on the
// output stream; only input errors such as io.EOF are returned.
func (s *Shell) Execute(line string) error {
	args, err := shellquote.Split(line)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid input: %v\n", err)
		return nil
	}
	if len(args) == 0 {
		fmt.Fprintln(s.out, hintMessage)
		return nil
	}

	cmd, ok := lookupCommand(args[0])
	if !ok {
		fmt.Fprintf(s.out, "There is no '%s' command.\n", args[0])
		return nil
	}

	err = cmd.run(s, args[1:])
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return err
	}

	level.Error(s.logger).Log("msg", "command failed", "command", cmd.name, "err", err)
	fmt.Fprintf(s.out, "Error: %v\n", err)
	return nil
}

// Running reports whether the loop will read another command
func (s *Shell) Running() bool {
	return s.running
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
