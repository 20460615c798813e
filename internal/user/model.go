package user

import "storefront/internal/session"

// Profile is the signed-in user's account as the users service returns it.
type Profile struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	Role      session.Role `json:"role"`
	AvatarURL *string      `json:"avatarUrl,omitempty"`
}

// UpdateProfileRequest changes any subset of the fields. Changing the password
// requires the current one.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Avatar      *string `json:"avatar,omitempty"`
	Password    *string `json:"password,omitempty" validate:"required_with=NewPassword"`
	NewPassword *string `json:"newPassword,omitempty" validate:"omitempty,min=8,max=100"`
}

func (r UpdateProfileRequest) empty() bool {
	return r.Name == nil && r.Avatar == nil && r.NewPassword == nil
}
