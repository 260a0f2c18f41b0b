// Package validation implements the field rules records must satisfy before
// they are written.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
)

// Names of the built-in policies
const (
	PolicyDefault = "default"
	PolicyCustom  = "custom"
)

// Grade classes
const (
	GradeLetter = "letter"
	GradeDigit  = "digit"
)

// Field names reported by ValidationError
const (
	FieldFirstName   = "first name"
	FieldLastName    = "last name"
	FieldDateOfBirth = "date of birth"
	FieldHeight      = "height"
	FieldSalary      = "salary"
	FieldGrade       = "grade"
)

// Rules are the limits a Policy enforces. A nil SalaryMax means no upper bound.
type Rules struct {
	FirstNameMin int              `yaml:"first_name_min"`
	FirstNameMax int              `yaml:"first_name_max"`
	LastNameMin  int              `yaml:"last_name_min"`
	LastNameMax  int              `yaml:"last_name_max"`
	MinBirthDate string           `yaml:"min_birth_date"`
	HeightMin    int16            `yaml:"height_min"`
	HeightMax    int16            `yaml:"height_max"`
	SalaryMin    decimal.Decimal  `yaml:"salary_min"`
	SalaryMax    *decimal.Decimal `yaml:"salary_max,omitempty"`
	Grade        string           `yaml:"grade"`
}

// Overrides holds optional replacements for individual Rules fields
type Overrides struct {
	FirstNameMin *int             `yaml:"first_name_min,omitempty"`
	FirstNameMax *int             `yaml:"first_name_max,omitempty"`
	LastNameMin  *int             `yaml:"last_name_min,omitempty"`
	LastNameMax  *int             `yaml:"last_name_max,omitempty"`
	MinBirthDate *string          `yaml:"min_birth_date,omitempty"`
	HeightMin    *int16           `yaml:"height_min,omitempty"`
	HeightMax    *int16           `yaml:"height_max,omitempty"`
	SalaryMin    *decimal.Decimal `yaml:"salary_min,omitempty"`
	SalaryMax    *decimal.Decimal `yaml:"salary_max,omitempty"`
	Grade        *string          `yaml:"grade,omitempty"`
}

// Policy checks record fields against a set of Rules
type Policy struct {
	name     string
	rules    Rules
	minBirth time.Time
	now      func() time.Time
}

// DefaultRules returns the rules of the "default" policy
func DefaultRules() Rules {
	return Rules{
		FirstNameMin: 2,
		FirstNameMax: 60,
		LastNameMin:  2,
		LastNameMax:  60,
		MinBirthDate: "1950-01-01",
		HeightMin:    100,
		HeightMax:    220,
		SalaryMin:    decimal.Zero,
		Grade:        GradeLetter,
	}
}

// CustomRules returns the rules of the "custom" policy
func CustomRules() Rules {
	salaryMax := decimal.NewFromInt(10000)
	return Rules{
		FirstNameMin: 2,
		FirstNameMax: 10,
		LastNameMin:  2,
		LastNameMax:  20,
		MinBirthDate: "1900-01-01",
		HeightMin:    50,
		HeightMax:    250,
		SalaryMin:    decimal.Zero,
		SalaryMax:    &salaryMax,
		Grade:        GradeDigit,
	}
}

// RulesFor returns the rules of a built-in policy
func RulesFor(name string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyDefault:
		return DefaultRules(), nil
	case PolicyCustom:
		return CustomRules(), nil
	}
	return Rules{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Names returns the names of the built-in policies
func Names() []string {
	return []string{PolicyDefault, PolicyCustom}
}

// NewPolicy creates a policy from explicit rules
func NewPolicy(name string, rules Rules) (*Policy, error) {
	if rules.FirstNameMin > rules.FirstNameMax || rules.LastNameMin > rules.LastNameMax {
		return nil, fmt.Errorf("invalid rules for %q: name minimum exceeds maximum", name)
	}
	if rules.HeightMin > rules.HeightMax {
		return nil, fmt.Errorf("invalid rules for %q: height minimum exceeds maximum", name)
	}
	if rules.SalaryMax != nil && rules.SalaryMin.GreaterThan(*rules.SalaryMax) {
		return nil, fmt.Errorf("invalid rules for %q: salary minimum exceeds maximum", name)
	}
	if rules.Grade != GradeLetter && rules.Grade != GradeDigit {
		return nil, fmt.Errorf("invalid rules for %q: unknown grade class %q", name, rules.Grade)
	}

	minBirth, err := time.Parse("2006-01-02", rules.MinBirthDate)
	if err != nil {
		return nil, fmt.Errorf("invalid rules for %q: min_birth_date: %w", name, err)
	}

	return &Policy{
		name:     name,
		rules:    rules,
		minBirth: minBirth,
		now:      time.Now,
	}, nil
}

// ByName returns the built-in policy with the given name
func ByName(name string) (*Policy, error) {
	return ByNameWithOverrides(name, Overrides{})
}

// ByNameWithOverrides returns a built-in policy with some rules replaced
func ByNameWithOverrides(name string, o Overrides) (*Policy, error) {
	rules, err := RulesFor(name)
	if err != nil {
		return nil, err
	}
	return NewPolicy(strings.ToLower(strings.TrimSpace(name)), o.Apply(rules))
}

// Apply returns rules with every set override applied
func (o Overrides) Apply(r Rules) Rules {
	if o.FirstNameMin != nil {
		r.FirstNameMin = *o.FirstNameMin
	}
	if o.FirstNameMax != nil {
		r.FirstNameMax = *o.FirstNameMax
	}
	if o.LastNameMin != nil {
		r.LastNameMin = *o.LastNameMin
	}
	if o.LastNameMax != nil {
		r.LastNameMax = *o.LastNameMax
	}
	if o.MinBirthDate != nil {
		r.MinBirthDate = *o.MinBirthDate
	}
	if o.HeightMin != nil {
		r.HeightMin = *o.HeightMin
	}
	if o.HeightMax != nil {
		r.HeightMax = *o.HeightMax
	}
	if o.SalaryMin != nil {
		r.SalaryMin = *o.SalaryMin
	}
	if o.SalaryMax != nil {
		r.SalaryMax = o.SalaryMax
	}
	if o.Grade != nil {
		r.Grade = *o.Grade
	}
	return r
}

// WithClock returns a copy of the policy that uses now as the current time
func (p *Policy) WithClock(now func() time.Time) *Policy {
	cp := *p
	cp.now = now
	return &cp
}

// Name returns the policy name
func (p *Policy) Name() string {
	return p.name
}

// Rules returns the rules the policy enforces
func (p *Policy) Rules() Rules {
	return p.rules
}

// MinBirthDate returns the earliest accepted date of birth
func (p *Policy) MinBirthDate() time.Time {
	return p.minBirth
}

// Now returns the policy's current time, the latest accepted date of birth
func (p *Policy) Now() time.Time {
	return p.now()
}

// Validate checks every field in order and returns the first violation as a
// *ValidationError
func (p *Policy) Validate(f codec.Fields) error {
	checks := []struct {
		field string
		check func() (bool, string)
	}{
		{FieldFirstName, func() (bool, string) { return p.CheckFirstName(f.FirstName) }},
		{FieldLastName, func() (bool, string) { return p.CheckLastName(f.LastName) }},
		{FieldDateOfBirth, func() (bool, string) { return p.CheckDateOfBirth(f.DateOfBirth) }},
		{FieldHeight, func() (bool, string) { return p.CheckHeight(f.Height) }},
		{FieldSalary, func() (bool, string) { return p.CheckSalary(f.Salary) }},
		{FieldGrade, func() (bool, string) { return p.CheckGrade(f.Grade) }},
	}

	for _, c := range checks {
		if ok, msg := c.check(); !ok {
			return &ValidationError{Field: c.field, Message: msg}
		}
	}
	return nil
}

// CheckFirstName validates a first name
func (p *Policy) CheckFirstName(name string) (bool, string) {
	return checkName(FieldFirstName, name, p.rules.FirstNameMin, p.rules.FirstNameMax)
}

// CheckLastName validates a last name
func (p *Policy) CheckLastName(name string) (bool, string) {
	return checkName(FieldLastName, name, p.rules.LastNameMin, p.rules.LastNameMax)
}

// CheckDateOfBirth validates a date of birth
func (p *Policy) CheckDateOfBirth(dob time.Time) (bool, string) {
	if dob.Before(p.minBirth) || dob.After(p.now()) {
		return false, fmt.Sprintf("date of birth should be between %s and today", p.minBirth.Format("01/02/2006"))
	}
	return true, ""
}

// CheckHeight validates a height
func (p *Policy) CheckHeight(height int16) (bool, string) {
	if height < p.rules.HeightMin || height > p.rules.HeightMax {
		return false, fmt.Sprintf("height should be from %d to %d", p.rules.HeightMin, p.rules.HeightMax)
	}
	return true, ""
}

// CheckSalary validates a salary
func (p *Policy) CheckSalary(salary decimal.Decimal) (bool, string) {
	if salary.LessThan(p.rules.SalaryMin) {
		return false, fmt.Sprintf("salary should not be less than %s", p.rules.SalaryMin)
	}
	if p.rules.SalaryMax != nil && salary.GreaterThan(*p.rules.SalaryMax) {
		return false, fmt.Sprintf("salary should be from %s to %s", p.rules.SalaryMin, p.rules.SalaryMax)
	}
	return true, ""
}

// CheckGrade validates a grade
func (p *Policy) CheckGrade(grade byte) (bool, string) {
	r := rune(grade)
	if grade >= utf8.RuneSelf {
		return false, "grade should be a single ASCII character"
	}

	switch p.rules.Grade {
	case GradeDigit:
		if !unicode.IsDigit(r) {
			return false, "grade should contain one digit"
		}
	default:
		if !unicode.IsLetter(r) {
			return false, "grade should contain one letter"
		}
	}
	return true, ""
}

func checkName(field, name string, min, max int) (bool, string) {
	if strings.TrimSpace(name) == "" {
		return false, fmt.Sprintf("%s should not be blank", field)
	}
	if n := utf8.RuneCountInString(name); n < min || n > max {
		return false, fmt.Sprintf("%s should contain from %d to %d symbols", field, min, max)
	}
	if len(name) > codec.StringFieldWidth {
		return false, fmt.Sprintf("%s should not exceed %d bytes", field, codec.StringFieldWidth)
	}
	if strings.ContainsRune(name, codec.Sentinel) {
		return false, fmt.Sprintf("%s should not contain %q", field, codec.Sentinel)
	}
	return true, ""
}
