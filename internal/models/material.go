package models

import "strings"

// Material is a catalog entry. The collection has no unique key, locally or
// remotely, so duplicates are possible; the sync engine preserves that
// asymmetry instead of inventing one.
type Material struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Item        string `json:"item"`
}

func (Material) TableName() string {
	return "materials"
}

// Label is the display form used when a request references a material.
func (m Material) Label() string {
	return strings.TrimSpace(m.Subcategory + " " + m.Item)
}

func (m Material) Row() map[string]any {
	return map[string]any{
		"category":    m.Category,
		"subcategory": m.Subcategory,
		"item":        m.Item,
	}
}
