package mail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/campusbot/internal/mail"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     mail.Message
		wantErr bool
	}{
		{"valid", mail.Message{To: "admin@college.edu", Subject: "Hi", Body: "x"}, false},
		{"named recipient", mail.Message{To: "Admin <admin@college.edu>", Subject: "Hi"}, false},
		{"missing recipient", mail.Message{Subject: "Hi"}, true},
		{"bad recipient", mail.Message{To: "not-an-address", Subject: "Hi"}, true},
		{"empty subject", mail.Message{To: "a@b.co", Subject: "  "}, true},
		{"header injection", mail.Message{To: "a@b.co", Subject: "Hi\r\nBcc: x@y.z"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.msg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, mail.ErrInvalidMessage)
				return
			}
			assert.NoError(t, err)
		})
	}
}
