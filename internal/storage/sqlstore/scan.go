package sqlstore

import (
	"fmt"
	"time"
)

// dbDate scans a DATE column. MySQL (parseTime) and pgx hand back time.Time,
// SQLite hands back the YYYY-MM-DD text it was given.
type dbDate struct {
	t time.Time
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		d.t = time.Time{}
		return nil
	}

	return fmt.Errorf("unsupported date value %T", src)
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}

	d.t = t
	return nil
}

func dateParam(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
