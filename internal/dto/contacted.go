package dto

// ContactedUpdate sets the contacted flag of one business.
type ContactedUpdate struct {
	Name      string `json:"name"`
	Contacted bool   `json:"contacted"`
}

// ContactedUpdateRequest is the batch write payload.
type ContactedUpdateRequest struct {
	Updates []ContactedUpdate `json:"updates"`
}

// ContactedUpdateResponse reports how many updates were received.
type ContactedUpdateResponse struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}
