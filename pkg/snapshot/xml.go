package snapshot

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ssargent/filecabinet/pkg/codec"
)

type xmlDocument struct {
	XMLName xml.Name    `xml:"records"`
	Records []xmlRecord `xml:"record"`
}

type xmlRecord struct {
	ID          string  `xml:"id,attr"`
	Name        xmlName `xml:"name"`
	DateOfBirth string  `xml:"dateofbirth"`
	Height      string  `xml:"height"`
	Salary      string  `xml:"salary"`
	Grade       string  `xml:"grade"`
}

type xmlName struct {
	First string `xml:"first,attr"`
	Last  string `xml:"last,attr"`
}

// WriteXML writes the records as a <records> document
func (s *Snapshot) WriteXML(w io.Writer) error {
	doc := xmlDocument{Records: make([]xmlRecord, 0, len(s.records))}
	for _, r := range s.records {
		doc.Records = append(doc.Records, xmlRecord{
			ID:          strconv.FormatInt(int64(r.ID), 10),
			Name:        xmlName{First: r.FirstName, Last: r.LastName},
			DateOfBirth: codec.FormatDate(r.DateOfBirth),
			Height:      strconv.FormatInt(int64(r.Height), 10),
			Salary:      r.Salary.String(),
			Grade:       string(rune(r.Grade)),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadXML parses an XML export. Records with unparsable values are skipped
// and reported by Rejected; a malformed document is an error.
func ReadXML(r io.Reader) (*Snapshot, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	s := &Snapshot{}
	for i, x := range doc.Records {
		rec, err := parseXMLRecord(x)
		if err != nil {
			s.reject(i+1, "%v", err)
			continue
		}
		s.records = append(s.records, *rec)
	}
	return s, nil
}

func parseXMLRecord(x xmlRecord) (*codec.Record, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(x.ID), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", x.ID)
	}

	dob, err := codec.ParseDate(x.DateOfBirth)
	if err != nil {
		return nil, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(x.Height), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid height %q", x.Height)
	}

	salary, err := decimal.NewFromString(strings.TrimSpace(x.Salary))
	if err != nil {
		return nil, fmt.Errorf("invalid salary %q", x.Salary)
	}

	grade, err := parseGrade(x.Grade)
	if err != nil {
		return nil, err
	}

	return &codec.Record{
		ID: int32(id),
		Fields: codec.Fields{
			FirstName:   x.Name.First,
			LastName:    x.Name.Last,
			DateOfBirth: dob,
			Height:      int16(height),
			Salary:      salary,
			Grade:       grade,
		},
	}, nil
}
