package models

import "gorm.io/datatypes"

// School groups requests and stock under a single site. Coaches is a
// denormalized membership list of PS numbers; entries should reference
// existing users but that is advisory only and never enforced.
type School struct {
	ID      string                        `json:"id" gorm:"primaryKey;size:32"`
	Nome    string                        `json:"nome"`
	City    string                        `json:"city"`
	Coaches datatypes.JSONSlice[string]   `json:"coaches"`
}

func (School) TableName() string {
	return "schools"
}

// HasCoach reports whether ps appears in the school's coach list.
func (s School) HasCoach(ps string) bool {
	for _, c := range s.Coaches {
		if c == ps {
			return true
		}
	}
	return false
}

// Row projects the school to the remote schools table shape.
func (s School) Row() map[string]any {
	return map[string]any{
		"id":      s.ID,
		"nome":    s.Nome,
		"city":    s.City,
		"coaches": s.Coaches,
	}
}
