package mercadopago

import "encoding/json"

type preferenceRequest struct {
	Items               []preferenceItem  `json:"items"`
	Payer               preferencePayer   `json:"payer"`
	BackURLs            backURLs          `json:"back_urls"`
	AutoReturn          string            `json:"auto_return,omitempty"`
	ExternalReference   string            `json:"external_reference"`
	NotificationURL     string            `json:"notification_url,omitempty"`
	StatementDescriptor string            `json:"statement_descriptor,omitempty"`
	Expires             bool              `json:"expires"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

type preferenceItem struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CategoryID  string      `json:"category_id"`
	Quantity    int         `json:"quantity"`
	CurrencyID  string      `json:"currency_id"`
	UnitPrice   json.Number `json:"unit_price"`
}

type preferencePayer struct {
	Name           string         `json:"name"`
	Surname        string         `json:"surname"`
	Email          string         `json:"email"`
	Identification identification `json:"identification"`
}

type identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type paymentResponse struct {
	ID                json.Number    `json:"id"`
	Status            string         `json:"status"`
	StatusDetail      string         `json:"status_detail"`
	ExternalReference string         `json:"external_reference"`
	TransactionAmount json.Number    `json:"transaction_amount"`
	Metadata          map[string]any `json:"metadata"`
}

type paymentSearchResponse struct {
	Results []paymentResponse `json:"results"`
}

type merchantOrderResponse struct {
	ID                json.Number            `json:"id"`
	ExternalReference string                 `json:"external_reference"`
	Payments          []merchantOrderPayment `json:"payments"`
}

type merchantOrderPayment struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
