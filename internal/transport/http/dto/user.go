package dto

// UserAuth is the signup body
type UserAuth struct {
	Email    string `json:"email" validate:"required,email" example:"a@x.com"`
	Password string `json:"password" validate:"required,min=5,max=24" example:"secret1"`
}
