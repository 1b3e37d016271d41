package mailer

// Conf is read from .mailer.json
type Conf struct {
	Endpoint string `json:"endpoint"` // default https://api.resend.com/emails
	APIKey   string `json:"api_key"`
	From     string `json:"from"` // e.g. "FloraSoft <noreply@florasoft.website>"
	TimeoutS int    `json:"timeout_sec"`
}

const DefaultEndpoint = "https://api.resend.com/emails"
