package validator

// LoginRequest carries the credential pair checked against the users
// collection.
type LoginRequest struct {
	PSNumber string `json:"ps_number" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RequestItem is one line of a submitted equipment request batch.
type RequestItem struct {
	SchoolID string `json:"school_id" validate:"required"`
	Category string `json:"category" validate:"required"`
	Material string `json:"material" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// RequestEdit updates one pending request through the workflow. Date is
// deliberately absent: it is immutable after creation and edits to it are
// ignored. Status is only honored for admins.
type RequestEdit struct {
	ID       string `json:"id" validate:"required"`
	SchoolID string `json:"school_id" validate:"omitempty"`
	Category string `json:"category" validate:"omitempty"`
	Material string `json:"material" validate:"omitempty"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
	Status   string `json:"status" validate:"omitempty,request_status"`
}

// StatusUpdate applies one status to a batch of pending requests.
type StatusUpdate struct {
	IDs    []string `json:"ids" validate:"required,min=1"`
	Status string   `json:"status" validate:"required,request_status"`
}

// UserRow is one row of the admin user editor.
type UserRow struct {
	PSNumber   string `json:"ps_number" validate:"required"`
	Password   string `json:"password"`
	Credential string `json:"credential" validate:"omitempty"`
	Name       string `json:"name"`
}

// SchoolRow is one row of the admin school editor. Coaches arrives as raw PS
// numbers; the service normalizes and drops invalid entries with warnings.
type SchoolRow struct {
	ID      string   `json:"id"`
	Nome    string   `json:"nome"`
	City    string   `json:"city"`
	Coaches []string `json:"coaches"`
}

// MaterialRow is one catalog entry of the admin material editor.
type MaterialRow struct {
	Category    string `json:"category" validate:"required"`
	Subcategory string `json:"subcategory"`
	Item        string `json:"item"`
}

// StockEdit is one row of the stock editor grid.
type StockEdit struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id" validate:"required"`
	Project  string `json:"project"`
	Type     string `json:"type"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

// SyncOptions selects the push behavior. Replace is only honored together
// with Force; the pair enables the destructive clear-then-upsert path.
type SyncOptions struct {
	Force   bool `json:"force"`
	Replace bool `json:"replace"`
}
