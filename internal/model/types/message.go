package types

type InquiryRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,e164"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type InquiryQuery struct {
	Pagination

	Status string `query:"status" validate:"omitempty,oneof=new read answered archived"`
}

type InquiryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read answered archived"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type SendMessageRequest struct {
	RecipientID int64  `json:"recipientId" validate:"required,min=1"`
	PropertyRef string `json:"propertyRef" validate:"omitempty,max=32"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Body        string `json:"body" validate:"required,max=5000"`
}
