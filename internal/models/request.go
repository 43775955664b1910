package models

type RequestStatus string

const (
	StatusPending   RequestStatus = "Pending"
	StatusProcessed RequestStatus = "Processed"
	StatusApproved  RequestStatus = "Approved"
	StatusRejected  RequestStatus = "Rejected"
)

// Valid reports whether s is a known workflow status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is an equipment request submitted by a coach for a school.
// Date is set at creation and immutable afterwards; only Pending requests
// may be edited or deleted through the workflow.
type Request struct {
	ID       string        `json:"id" gorm:"primaryKey;size:64"`
	SchoolID string        `json:"school_id" gorm:"size:32;column:school_id"`
	Category string        `json:"category"`
	Material string        `json:"material"`
	Quantity Quantity      `json:"quantity"`
	Date     string        `json:"date"`
	PSNumber string        `json:"ps_number" gorm:"size:32;column:ps_number"`
	Status   RequestStatus `json:"status" gorm:"size:16;default:Pending"`
}

func (Request) TableName() string {
	return "requests"
}

func (r Request) IsPending() bool {
	return r.Status == StatusPending
}

// Row projects the request to the remote requests table shape, with the
// quantity coerced to a plain integer.
func (r Request) Row() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"school_id": r.SchoolID,
		"category":  r.Category,
		"material":  r.Material,
		"quantity":  r.Quantity.Int(),
		"date":      r.Date,
		"ps_number": r.PSNumber,
		"status":    string(r.Status),
	}
}
