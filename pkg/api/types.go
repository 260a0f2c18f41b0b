package api

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
	"github.com/ssargent/filecabinet/pkg/index"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// RecordRequest is the body of create and edit requests
type RecordRequest struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	DateOfBirth string          `json:"date_of_birth"`
	Height      int16           `json:"height"`
	Salary      decimal.Decimal `json:"salary"`
	Grade       string          `json:"grade"`
}

// RecordResponse is the JSON form of a stored record
type RecordResponse struct {
	ID          int32           `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	DateOfBirth string          `json:"date_of_birth"`
	Height      int16           `json:"height"`
	Salary      decimal.Decimal `json:"salary"`
	Grade       string          `json:"grade"`
}

// CreatedResponse is returned after a record is created
type CreatedResponse struct {
	ID int32 `json:"id"`
}

// Fields converts the request into record fields
func (r RecordRequest) Fields() (codec.Fields, error) {
	dob, err := codec.ParseDate(r.DateOfBirth)
	if err != nil {
		return codec.Fields{}, err
	}

	grade := strings.TrimSpace(r.Grade)
	if len(grade) != 1 {
		return codec.Fields{}, fmt.Errorf("grade must be a single character")
	}

	return codec.Fields{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: dob,
		Height:      r.Height,
		Salary:      r.Salary,
		Grade:       grade[0],
	}, nil
}

func newRecordResponse(r codec.Record) RecordResponse {
	return RecordResponse{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: index.DateKey(r.DateOfBirth),
		Height:      r.Height,
		Salary:      r.Salary,
		Grade:       string(rune(r.Grade)),
	}
}

func newRecordResponses(records []codec.Record) []RecordResponse {
	result := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, newRecordResponse(r))
	}
	return result
}
