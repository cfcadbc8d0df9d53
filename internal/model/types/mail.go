package types

const (
	MailKindVerification  = "verification"
	MailKindPasswordReset = "password_reset"
	MailKindWelcome       = "welcome"
	MailKindInquiry       = "inquiry"
	MailKindContact       = "contact"
)

// MailJob is the payload published on the mail stream.
type MailJob struct {
	Kind     string            `json:"kind"`
	To       string            `json:"to"`
	Language string            `json:"language"`
	Data     map[string]string `json:"data"`
	// DedupeID is used as the JetStream message id.
	DedupeID string `json:"dedupeId"`
}
