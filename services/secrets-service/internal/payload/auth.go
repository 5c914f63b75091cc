package payload

type LoginRequest struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,max=128"`
}

type RegisterRequest struct {
	Username string `validate:"required,max=64"`
	Password string `validate:"required,max=128"`
}
