package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Calendar dates are stored as plain YYYY-MM-DD text and read back as UTC
// midnight, so a date never shifts with the host time zone.
const dateLayout = "2006-01-02"

func dateValue(t time.Time) string {
	return t.Format(dateLayout)
}

func nullDateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateValue(*t)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func parseNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil //nolint:nilnil // absent date
	}
	t, err := parseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type nullDate struct {
	dst **time.Time
	src sql.NullString
}

func parseNullDates(dates ...nullDate) error {
	for _, d := range dates {
		t, err := parseNullDate(d.src)
		if err != nil {
			return err
		}
		*d.dst = t
	}
	return nil
}

func timestampValue(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func jsonValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeJSON(ns sql.NullString, dst any) error {
	if !ns.Valid || ns.String == "" || ns.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), dst)
}

// stringList stores a slice as a JSON array. Empty lists read back as nil.
func stringList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	return jsonValue(values)
}

func parseStringList(ns sql.NullString) ([]string, error) {
	var values []string
	if err := decodeJSON(ns, &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

type timestamps struct {
	created string
	updated string
}

func (ts timestamps) parse() (time.Time, time.Time, error) {
	created, err := parseTimestamp(ts.created)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	updated, err := parseTimestamp(ts.updated)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return created, updated, nil
}
