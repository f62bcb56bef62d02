package resend

type sendRequest struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	ReplyTo     string       `json:"reply_to,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
