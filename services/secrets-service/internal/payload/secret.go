package payload

type SubmitSecretRequest struct {
	Secret string `validate:"required,max=1000"`
}
