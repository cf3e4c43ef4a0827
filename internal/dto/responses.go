package dto

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error     string   `json:"error"`
	Operation string   `json:"operation"`
	Missing   []string `json:"missing,omitempty"`
}

type ApplePayPaymentResponse struct {
	Approved  bool   `json:"approved"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type ApplePayCompleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   any    `json:"token"`
}

type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	User UserResponse `json:"user"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}
