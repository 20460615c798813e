// Package session holds the signed-in user and bearer token, mirrored to
// durable storage so a restart restores the session without a round trip.
package session

type Role string

const (
	RoleSeller Role = "SELLER"
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      Role    `json:"role"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Session is the authenticated pair. Both halves are always set together.
type Session struct {
	User  User
	Token string
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=100"`
	Name      string  `json:"name" validate:"required,notblank,min=2,max=50"`
	Role      Role    `json:"role" validate:"required,oneof=SELLER CLIENT"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// UserPatch is a partial local update. Role is deliberately absent.
type UserPatch struct {
	Email     *string
	Name      *string
	AvatarURL *string
}

func (u User) apply(p UserPatch) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.AvatarURL != nil {
		avatar := *p.AvatarURL
		u.AvatarURL = &avatar
	}
	return u
}

// loginResponse accepts the flat body of the API and the nested {user, token} form.
type loginResponse struct {
	Token string `json:"token"`
	User
	Nested *User `json:"user,omitempty"`
}

func (r loginResponse) user() User {
	if r.Nested != nil {
		return *r.Nested
	}
	return r.User
}
