// Package generator produces random records that satisfy a validation policy.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/snapshot"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// Defaults used by the generator command
const (
	DefaultAmount  = 100
	DefaultStartID = 1
)

// maxNameAttempts bounds the retries for a name the policy accepts
const maxNameAttempts = 100

// salarySpan is the salary range used when the policy has no upper bound
var salarySpan = decimal.NewFromInt(100000)

// Generator builds random records
type Generator struct {
	policy    *validation.Policy
	rnd       *rand.Rand
	firstName func() string
	lastName  func() string
}

// Option configures a Generator
type Option func(*Generator)

// WithSeed makes the numeric fields reproducible
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithNames replaces the faker name sources
func WithNames(first, last func() string) Option {
	return func(g *Generator) {
		g.firstName = first
		g.lastName = last
	}
}

// New creates a generator for policy
func New(policy *validation.Policy, opts ...Option) *Generator {
	g := &Generator{
		policy:    policy,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		firstName: func() string { return faker.FirstName() },
		lastName:  func() string { return faker.LastName() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns amount records with consecutive ids starting at startID
func (g *Generator) Generate(startID int32, amount int) (*snapshot.Snapshot, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("records amount must be positive, got %d", amount)
	}
	if startID <= 0 {
		return nil, fmt.Errorf("start id must be positive, got %d", startID)
	}
	if int64(startID)+int64(amount)-1 > math.MaxInt32 {
		return nil, fmt.Errorf("start id %d leaves room for fewer than %d records", startID, amount)
	}

	records := make([]codec.Record, 0, amount)
	for i := 0; i < amount; i++ {
		r, err := g.Record(startID + int32(i))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return snapshot.New(records), nil
}

// Record returns one random record with the given id
func (g *Generator) Record(id int32) (codec.Record, error) {
	first, err := g.name(g.firstName, g.policy.CheckFirstName)
	if err != nil {
		return codec.Record{}, err
	}
	last, err := g.name(g.lastName, g.policy.CheckLastName)
	if err != nil {
		return codec.Record{}, err
	}

	f := codec.Fields{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: g.dateOfBirth(),
		Height:      g.height(),
		Salary:      g.salary(),
		Grade:       g.grade(),
	}
	if err := g.policy.Validate(f); err != nil {
		return codec.Record{}, fmt.Errorf("generated record %d: %w", id, err)
	}
	return codec.Record{ID: id, Fields: f}, nil
}

func (g *Generator) name(source func() string, check func(string) (bool, string)) (string, error) {
	var msg string
	for i := 0; i < maxNameAttempts; i++ {
		candidate := source()
		var ok bool
		if ok, msg = check(candidate); ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no acceptable name after %d attempts: %s", maxNameAttempts, msg)
}

func (g *Generator) dateOfBirth() time.Time {
	min := g.policy.MinBirthDate()
	now := g.policy.Now()
	today := codec.Date(now.Year(), int(now.Month()), now.Day())
	if today.After(now) {
		today = today.AddDate(0, 0, -1)
	}

	days := int(today.Sub(min).Hours() / 24)
	if days <= 0 {
		return min
	}
	t := min.AddDate(0, 0, g.rnd.Intn(days+1))
	return codec.Date(t.Year(), int(t.Month()), t.Day())
}

func (g *Generator) height() int16 {
	rules := g.policy.Rules()
	return rules.HeightMin + int16(g.rnd.Intn(int(rules.HeightMax)-int(rules.HeightMin)+1))
}

// salary picks a value with two decimal places inside the salary bounds
func (g *Generator) salary() decimal.Decimal {
	rules := g.policy.Rules()
	max := rules.SalaryMin.Add(salarySpan)
	if rules.SalaryMax != nil {
		max = *rules.SalaryMax
	}

	cents := max.Sub(rules.SalaryMin).Shift(2).Floor().IntPart()
	if cents <= 0 {
		return rules.SalaryMin
	}
	return rules.SalaryMin.Add(decimal.New(g.rnd.Int63n(cents+1), -2))
}

func (g *Generator) grade() byte {
	if g.policy.Rules().Grade == validation.GradeDigit {
		return byte('0' + g.rnd.Intn(10))
	}
	return byte('A' + g.rnd.Intn(26))
}
