package models

type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserPatch holds the fields of a partial user update; nil means unchanged.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Apply merges the non-nil fields into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
