package dto

// ContactFormRequest is a submission of the public contact form. Website is
// the honeypot field and must stay empty.
type ContactFormRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Website string `json:"website"`
	Token   string `json:"token"`
}

// ContactFormResponse acknowledges a submission.
type ContactFormResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
