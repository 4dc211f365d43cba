package request

// LoginRequest is an OAuth2 password grant form; the username is the account email.
type LoginRequest struct {
	GrantType string `form:"grant_type" validate:"omitempty,eq=password"`
	Username  string `form:"username" validate:"required"`
	Password  string `form:"password" validate:"required"`
}

type ResetEmailRequest struct {
	Email       string `form:"email" validate:"required,email"`
	NewEmail    string `form:"new_email" validate:"required,email"`
	Password    string `form:"password" validate:"required"`
	NewPassword string `form:"new_password" validate:"required,min=5,max=24"`
}
