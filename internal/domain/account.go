package domain

import "time"

// Role tags what an account may do beyond buying tickets.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Account is a registered ticket buyer (or organizer staff).
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Avatar       string
	Role         Role
	IsVerified   bool
	Tickets      []TicketStub
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountSnapshot is the serialized form of an account held in the session store.
// It never carries the password hash.
type AccountSnapshot struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Avatar     string       `json:"avatar,omitempty"`
	Role       Role         `json:"role"`
	IsVerified bool         `json:"is_verified"`
	Tickets    []TicketStub `json:"tickets"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Snapshot copies the session-safe fields of the account.
func (a *Account) Snapshot() AccountSnapshot {
	tickets := make([]TicketStub, len(a.Tickets))
	copy(tickets, a.Tickets)
	return AccountSnapshot{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Avatar:     a.Avatar,
		Role:       a.Role,
		IsVerified: a.IsVerified,
		Tickets:    tickets,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// HasRole reports whether the snapshot carries one of the given roles.
func (s AccountSnapshot) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// AccountDraft is a registration awaiting email activation.
type AccountDraft struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
