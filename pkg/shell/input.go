package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
)

const promptDateLayout = "1/2/2006"

// readInput prompts until the line converts and passes check
func readInput[T any](s *Shell, prompt string, convert func(string) (T, error), check func(T) (bool, string)) (T, error) {
	for {
		fmt.Fprint(s.out, prompt)

		var zero T
		line, err := s.readLine()
		if err != nil {
			return zero, err
		}

		value, err := convert(line)
		if err != nil {
			fmt.Fprintf(s.out, "Conversion failed: %v. Please, correct your input.\n", err)
			continue
		}

		if ok, msg := check(value); !ok {
			fmt.Fprintf(s.out, "Validation failed: %s. Please, correct your input.\n", msg)
			continue
		}
		return value, nil
	}
}

// readFields prompts for every field of a record
func (s *Shell) readFields() (codec.Fields, error) {
	var (
		f   codec.Fields
		err error
	)

	if f.FirstName, err = readInput(s, "First name: ", convertString, s.policy.CheckFirstName); err != nil {
		return f, err
	}
	if f.LastName, err = readInput(s, "Last name: ", convertString, s.policy.CheckLastName); err != nil {
		return f, err
	}
	if f.DateOfBirth, err = readInput(s, "Date of birth: ", convertDate, s.policy.CheckDateOfBirth); err != nil {
		return f, err
	}
	if f.Height, err = readInput(s, "Height: ", convertHeight, s.policy.CheckHeight); err != nil {
		return f, err
	}
	if f.Salary, err = readInput(s, "Salary: ", convertSalary, s.policy.CheckSalary); err != nil {
		return f, err
	}
	if f.Grade, err = readInput(s, "Grade: ", convertGrade, s.policy.CheckGrade); err != nil {
		return f, err
	}
	return f, nil
}

// confirm asks a yes/no question until it gets y, n, yes or no
func (s *Shell) confirm(prompt string) (bool, error) {
	for {
		fmt.Fprint(s.out, prompt)
		line, err := s.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func convertString(input string) (string, error) {
	return strings.TrimSpace(input), nil
}

func convertDate(input string) (time.Time, error) {
	t, err := time.Parse(promptDateLayout, strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, errors.New("invalid date, try mm/dd/yyyy")
	}
	return codec.Date(t.Year(), int(t.Month()), t.Day()), nil
}

func convertHeight(input string) (int16, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 16)
	if err != nil {
		return 0, errors.New("failed to parse height")
	}
	return int16(v), nil
}

func convertSalary(input string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Zero, errors.New("failed to parse salary")
	}
	return d, nil
}

func convertGrade(input string) (byte, error) {
	input = strings.TrimSpace(input)
	if len(input) != 1 {
		return 0, errors.New("should contain one symbol")
	}
	return input[0], nil
}
