package entities

type Email struct {
	To             string
	Subject        string
	HTML           string
	Attachments    []Attachment
	IdempotencyKey string
}

type Attachment struct {
	Filename string
	Content  []byte
}
