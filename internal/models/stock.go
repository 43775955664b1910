package models

type Project string

const (
	ProjectMOE   Project = "MOE"
	ProjectESE   Project = "ESE"
	ProjectOther Project = "OTHER"
)

// StockRow is one kimono stock line for a school. Aggregated reads group by
// project, then type, then size, summing quantities.
type StockRow struct {
	ID       string   `json:"id" gorm:"primaryKey;size:64"`
	SchoolID string   `json:"school_id" gorm:"size:32;column:school_id"`
	Project  Project  `json:"project" gorm:"size:16"`
	Type     string   `json:"type"`
	Size     string   `json:"size"`
	Quantity Quantity `json:"quantity"`
}

func (StockRow) TableName() string {
	return "stock_kimonos"
}

// Row projects the stock row to the remote stock_kimonos table shape.
func (r StockRow) Row() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"school_id": r.SchoolID,
		"project":   string(r.Project),
		"type":      r.Type,
		"size":      r.Size,
		"quantity":  r.Quantity.Int(),
	}
}
