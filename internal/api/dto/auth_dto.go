package dto

import (
	"time"

	"github.com/nexis/campus-services/internal/domain"
)

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries optional profile fields; absent fields stay
// unchanged.
type UpdateProfileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
}

// UserDto is the wire shape of an account, never including the password hash.
type UserDto struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	Role        string    `json:"role"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthResponse is returned by login and refresh.
type AuthResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresIn    int64   `json:"expiresIn"`
	User         UserDto `json:"user"`
}

// NewUserDto maps the domain model to its wire shape.
func NewUserDto(user *domain.User) UserDto {
	return UserDto{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Address:     user.Address,
		Role:        string(user.Role),
		Enabled:     user.Enabled,
		CreatedAt:   user.CreatedAt,
	}
}

// NewUserDtos maps a slice of users.
func NewUserDtos(users []*domain.User) []UserDto {
	out := make([]UserDto, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserDto(user))
	}
	return out
}
