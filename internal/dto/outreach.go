package dto

// OutreachSendRequest is the payload of an operator-composed prospect e-mail.
type OutreachSendRequest struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	Business string `json:"business,omitempty"`
	Website  string `json:"website,omitempty"`
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"`
}

// OutreachSendResponse acknowledges a delivered prospect e-mail.
type OutreachSendResponse struct {
	OK        bool `json:"ok"`
	Contacted bool `json:"contacted"`
}

// CronRefreshResponse maps each refreshed query to its list length, or -1
// when the refresh failed.
type CronRefreshResponse struct {
	OK      bool           `json:"ok"`
	Results map[string]int `json:"results"`
}
