package models

import (
	"strconv"
	"strings"
)

// Quantity tolerates the loosely-typed values found in legacy collection
// files: numbers, numeric strings, or garbage. Anything that cannot be read
// as an integer decodes to 0, matching the defaulting rules applied at every
// load boundary. It always marshals back as a plain number, so a save heals
// the file.
type Quantity int

func (q Quantity) Int() int {
	return int(q)
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*q = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*q = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*q = Quantity(n)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*q = Quantity(int(f))
		return nil
	}
	*q = 0
	return nil
}
