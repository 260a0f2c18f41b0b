package shell

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/store"
	"github.com/ssargent/filecabinet/pkg/validation"
)

type command struct {
	name    string
	summary string
	help    string
	run     func(s *Shell, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"help", "prints the help screen", "The 'help' command prints the help screen. Type 'help <command>' for details.", (*Shell).help},
		{"exit", "exits the application", "The 'exit' command exits the application.", (*Shell).exit},
		{"stat", "shows statistics about service", "The 'stat' command shows the record count and index statistics.", (*Shell).stat},
		{"create", "create a new record", "The 'create' command asks for every field and creates a new record.", (*Shell).create},
		{"edit", "edit existing record", "The 'edit' command takes a record id and asks for new values of every field.", (*Shell).edit},
		{"list", "show all records", "The 'list' command shows all records in creation order.", (*Shell).list},
		{"find", "find records by parameter", "Type 'find firstname|lastname|dateofbirth <value>'. Dates are mm/dd/yyyy.", (*Shell).find},
		{"export", "export records to file", "Type 'export csv|xml <path>' to save all records to a file.", (*Shell).export},
		{"import", "import records from file", "Type 'import csv|xml <path>' to load records from a file. Existing ids are replaced.", (*Shell).importRecords},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if strings.EqualFold(c.name, name) {
			return c, true
		}
	}
	return command{}, false
}

func (s *Shell) help(args []string) error {
	if len(args) > 0 {
		if c, ok := lookupCommand(args[0]); ok {
			fmt.Fprintln(s.out, c.help)
		} else {
			fmt.Fprintf(s.out, "There is no explanation for '%s' command.\n", args[0])
		}
		return nil
	}

	fmt.Fprintln(s.out, "Available commands:")
	for _, c := range commands {
		fmt.Fprintf(s.out, "\t%s\t- %s\n", c.name, c.summary)
	}
	return nil
}

func (s *Shell) exit(args []string) error {
	fmt.Fprintln(s.out, "Exiting an application...")
	s.running = false
	return nil
}

func (s *Shell) stat(args []string) error {
	return s.printStats(s.records.Stats())
}

func (s *Shell) create(args []string) error {
	f, err := s.readFields()
	if err != nil {
		return err
	}

	id, err := s.records.CreateRecord(f)
	if err != nil {
		return s.reportWriteError(err)
	}
	fmt.Fprintf(s.out, "Record #%d is created.\n", id)
	return nil
}

func (s *Shell) edit(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Wrong argument")
		return nil
	}
	id64, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		fmt.Fprintln(s.out, "Wrong argument")
		return nil
	}
	id := int32(id64)

	record, err := s.records.GetRecord(id)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(s.out, "#%d record is not found.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, formatRecord(*record))
	fmt.Fprintln(s.out, "Enter new valid arguments to change them")

	f, err := s.readFields()
	if err != nil {
		return err
	}
	if err := s.records.EditRecord(id, f); err != nil {
		return s.reportWriteError(err)
	}
	fmt.Fprintf(s.out, "Record #%d is updated.\n", id)
	return nil
}

func (s *Shell) list(args []string) error {
	records, err := s.records.GetRecords()
	if err != nil {
		return err
	}
	if len(records) == 0 && s.format != config.OutputJSON {
		fmt.Fprintln(s.out, "No records yet")
		return nil
	}
	return s.printRecords(records)
}

func (s *Shell) find(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Type 'find firstname|lastname|dateofbirth <value>'")
		return nil
	}

	var lookup func(string) ([]codec.Record, error)
	switch strings.ToLower(args[0]) {
	case "firstname":
		lookup = s.records.FindByFirstName
	case "lastname":
		lookup = s.records.FindByLastName
	case "dateofbirth":
		lookup = s.records.FindByDate
	default:
		fmt.Fprintf(s.out, "There is no such parameter as '%s'\n", args[0])
		return nil
	}

	if len(args) < 2 {
		fmt.Fprintf(s.out, "Your argument should follow '%s' param\n", args[0])
		return nil
	}

	records, err := lookup(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if len(records) == 0 && s.format != config.OutputJSON {
		fmt.Fprintln(s.out, "No records were found")
		return nil
	}
	return s.printRecords(records)
}

func (s *Shell) export(args []string) error {
	format, path, ok := s.fileArgs(args)
	if !ok {
		return nil
	}

	if _, err := os.Stat(path); err == nil {
		rewrite, err := s.confirm(fmt.Sprintf("File is exist - rewrite %s [Y/n] ", path))
		if err != nil {
			return err
		}
		if !rewrite {
			return nil
		}
	}

	snap, err := s.records.Snapshot()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to create file: %v\n", err)
		return nil
	}
	defer file.Close()

	if format == snapshot.FormatCSV {
		err = snap.WriteCSV(file)
	} else {
		err = snap.WriteXML(file)
	}
	if err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}

	fmt.Fprintf(s.out, "All records are exported to file %s.\n", path)
	return nil
}

func (s *Shell) importRecords(args []string) error {
	format, path, ok := s.fileArgs(args)
	if !ok {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(s.out, "Import error: file %s is not exist.\n", path)
			return nil
		}
		return err
	}
	defer file.Close()

	var snap *snapshot.Snapshot
	if format == snapshot.FormatCSV {
		snap, err = snapshot.ReadCSV(file)
	} else {
		snap, err = snapshot.ReadXML(file)
	}
	if err != nil {
		fmt.Fprintf(s.out, "Import error: %v\n", err)
		return nil
	}

	result, err := s.records.Restore(snap)
	if err != nil {
		return err
	}

	for _, r := range snap.Rejected() {
		fmt.Fprintf(s.out, "Entry %d rejected: %s\n", r.Line, r.Reason)
	}
	for _, sk := range result.Skipped {
		fmt.Fprintf(s.out, "Record #%d skipped: %s\n", sk.ID, sk.Reason)
	}
	fmt.Fprintf(s.out, "%d records were imported from %s.\n", result.Created+result.Updated, path)
	return nil
}

// fileArgs parses "csv|xml <path>" and reports usage problems itself
func (s *Shell) fileArgs(args []string) (format, path string, ok bool) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Type the format (csv or xml) and then the path")
		return "", "", false
	}

	format, err := snapshot.ParseFormat(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "There is no such parameter as '%s'\n", args[0])
		return "", "", false
	}
	if len(args) < 2 {
		fmt.Fprintf(s.out, "Your argument should follow '%s' param\n", args[0])
		return "", "", false
	}
	return format, strings.Join(args[1:], " "), true
}

func (s *Shell) reportWriteError(err error) error {
	var vErr *validation.ValidationError
	if errors.As(err, &vErr) {
		fmt.Fprintf(s.out, "Validation failed: %s.\n", vErr.Message)
		return nil
	}
	return err
}
