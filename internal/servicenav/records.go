package servicenav

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedPayload means ServiceNav answered but the body does not match
	// the record shape we rely on.
	ErrMalformedPayload = errors.New("servicenav: malformed payload")
	// ErrUpstream covers transport failures and non-2xx answers.
	ErrUpstream = errors.New("servicenav: upstream error")
)

// ServiceNav field names, read verbatim from the upstream schema.
const (
	fieldID             = "id"
	fieldName           = "name"
	fieldHostName       = "Host Name"
	fieldHostAddress    = "Host IP/DNS"
	fieldHostID         = "Host ID"
	fieldCategoryName   = "Category Name"
	fieldTemplate       = "Template"
	fieldCompanyName    = "Company Name"
	fieldDescription    = "Description"
	fieldEnabled        = "Enabled"
	fieldBusinessImpact = "Business Impact"
	fieldHostMode       = "Host Mode"
	fieldCheckTemplate  = "Check Template"
	fieldActionTemplate = "Action Template"
)

type Company struct {
	ID   string
	Name string
}

// Equipment is one monitored host of a company. Only ID, HostName,
// HostAddress and CategoryName are used by the reconciliation.
type Equipment struct {
	ID             string
	HostName       string
	HostAddress    string
	CategoryName   string
	HostID         string
	Template       string
	CompanyName    string
	Description    string
	Enabled        string
	BusinessImpact *float64
	HostMode       string
	CheckTemplate  string
	ActionTemplate string
}

type rawRecord map[string]json.RawMessage

func malformed(index int, field, format string, args ...any) error {
	return fmt.Errorf("%w: record %d, field %q: %s", ErrMalformedPayload, index, field, fmt.Sprintf(format, args...))
}

func decodeRecords(body []byte) ([]rawRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedPayload)
	}

	var records []rawRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrMalformedPayload, i)
		}
	}

	return records, nil
}

// ParseCompanies validates the company list returned by ServiceNav.
func ParseCompanies(body []byte) ([]Company, error) {
	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	companies := make([]Company, 0, len(records))
	for i, rec := range records {
		id, err := rec.requiredID(i)
		if err != nil {
			return nil, err
		}

		name, err := rec.requiredString(i, fieldName, true)
		if err != nil {
			return nil, err
		}

		companies = append(companies, Company{ID: id, Name: name})
	}

	return companies, nil
}

// ParseEquipment validates the host list of one company.
func ParseEquipment(body []byte) ([]Equipment, error) {
	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	equipment := make([]Equipment, 0, len(records))
	for i, rec := range records {
		var eq Equipment

		if eq.ID, err = rec.requiredID(i); err != nil {
			return nil, err
		}
		if eq.HostName, err = rec.requiredString(i, fieldHostName, true); err != nil {
			return nil, err
		}
		if eq.HostAddress, err = rec.requiredString(i, fieldHostAddress, false); err != nil {
			return nil, err
		}
		// an empty category is legal, it is simply not billable
		if eq.CategoryName, err = rec.requiredString(i, fieldCategoryName, false); err != nil {
			return nil, err
		}

		optional := []struct {
			field string
			dst   *string
		}{
			{fieldHostID, &eq.HostID},
			{fieldTemplate, &eq.Template},
			{fieldCompanyName, &eq.CompanyName},
			{fieldDescription, &eq.Description},
			{fieldEnabled, &eq.Enabled},
			{fieldHostMode, &eq.HostMode},
			{fieldCheckTemplate, &eq.CheckTemplate},
			{fieldActionTemplate, &eq.ActionTemplate},
		}
		for _, o := range optional {
			if *o.dst, err = rec.optionalString(i, o.field); err != nil {
				return nil, err
			}
		}

		if eq.BusinessImpact, err = rec.optionalNumber(i, fieldBusinessImpact); err != nil {
			return nil, err
		}

		equipment = append(equipment, eq)
	}

	return equipment, nil
}

// requiredID accepts a string or a JSON number; ServiceNav exports both.
func (r rawRecord) requiredID(index int) (string, error) {
	raw, ok := r[fieldID]
	if !ok || isNull(raw) {
		return "", malformed(index, fieldID, "missing")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", malformed(index, fieldID, "empty")
		}
		return s, nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", malformed(index, fieldID, "expected string or number, got %s", raw)
	}

	return n.String(), nil
}

func (r rawRecord) requiredString(index int, field string, nonEmpty bool) (string, error) {
	raw, ok := r[field]
	if !ok || isNull(raw) {
		return "", malformed(index, field, "missing")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed(index, field, "expected string, got %s", raw)
	}
	if nonEmpty && strings.TrimSpace(s) == "" {
		return "", malformed(index, field, "empty")
	}

	return s, nil
}

func (r rawRecord) optionalString(index int, field string) (string, error) {
	raw, ok := r[field]
	if !ok || isNull(raw) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed(index, field, "expected string, got %s", raw)
	}

	return s, nil
}

func (r rawRecord) optionalNumber(index int, field string) (*float64, error) {
	raw, ok := r[field]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, malformed(index, field, "expected number, got %s", raw)
	}

	return &f, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
