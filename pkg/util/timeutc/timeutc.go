// Copyright (C) 2017 ScyllaDB

package timeutc

import "time"

// Now returns current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// Since returns the time elapsed since t.
func Since(t time.Time) time.Duration {
	return Now().Sub(t.UTC())
}

// Parse parses value according to layout and returns time in UTC.
func Parse(layout, value string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
