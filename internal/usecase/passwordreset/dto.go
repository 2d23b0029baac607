package passwordreset

type ForgotPasswordRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	ReturnURL string `json:"return_url"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,notblank"`
	Password        string `json:"password" validate:"required,min=8,max=255,notcompromised"`
	ConfirmPassword string `json:"confirm_password"`
}
