package jetstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailSubject(t *testing.T) {
	assert.Equal(t, "MAIL.verification", MailSubject("verification"))
	assert.Equal(t, "MAIL.*", MailSubject("*"))
}

func TestMailMsgID(t *testing.T) {
	assert.Equal(t, "", MailMsgID("contact", ""))
	assert.Equal(t, "contact:42", MailMsgID("contact", "42"))
	assert.NotEqual(t, MailMsgID("contact", "42"), MailMsgID("inquiry", "42"))
}
