package jetstream

import "properly.homes/backend/internal/constant"

// MailSubject is the subject mail jobs of kind are published on. Pass "*" to match every kind.
func MailSubject(kind string) string {
	return constant.MailSubjectPrefix + kind
}

// MailMsgID scopes a dedupe id to its mail kind so that two kinds never collide within the stream duplicate window.
func MailMsgID(kind, dedupeID string) string {
	if dedupeID == "" {
		return ""
	}
	return kind + ":" + dedupeID
}
