package user

type RegisterReq struct {
	Username        string `json:"username" validate:"required,max=150,username"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}
