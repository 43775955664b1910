package models

type Credential string

const (
	CredentialAdmin Credential = "Admin"
	CredentialCoach Credential = "Coach"
)

// Valid reports whether c is one of the two known roles.
func (c Credential) Valid() bool {
	return c == CredentialAdmin || c == CredentialCoach
}

// User is an account in the portal. Passwords are stored and compared in
// plaintext, an inherited deficiency of the source data, kept because the
// on-disk and remote credential format is part of the observable contract.
type User struct {
	PSNumber   string     `json:"ps_number" gorm:"primaryKey;size:32;column:ps_number"`
	Password   string     `json:"password" gorm:"not null"`
	Credential Credential `json:"credential" gorm:"size:16;default:Coach"`
	Name       string     `json:"name"`
}

func (User) TableName() string {
	return "users"
}

// Row projects the user to the remote users table shape.
func (u User) Row() map[string]any {
	return map[string]any{
		"ps_number":  u.PSNumber,
		"password":   u.Password,
		"credential": string(u.Credential),
		"name":       u.Name,
	}
}

// Coach is the denormalized read-mirror of a user kept in the remote
// "coaches" table. It carries a reduced field set and has its own lifecycle.
type Coach struct {
	PSNumber   string     `json:"ps_number" gorm:"primaryKey;size:32;column:ps_number"`
	Password   string     `json:"password"`
	Credential Credential `json:"credential" gorm:"size:16;default:Coach"`
}

func (Coach) TableName() string {
	return "coaches"
}

// Identity is the session-scoped view of an authenticated user. It is created
// at login and never persisted to disk.
type Identity struct {
	PSNumber   string     `json:"ps_number"`
	Credential Credential `json:"credential"`
	Name       string     `json:"name"`
}

func (id Identity) IsAdmin() bool {
	return id.Credential == CredentialAdmin
}
