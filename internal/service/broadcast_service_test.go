package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

// Validation runs before any repository or mailer access, so a service
// with nil dependencies is enough to exercise the rejection paths.
func TestSendBroadcastValidation(t *testing.T) {
	s := NewBroadcastService(nil, nil, zap.NewNop())

	tests := []struct {
		name    string
		subject string
		content string
		wantErr error
	}{
		{
			name:    "empty subject",
			subject: "   ",
			content: "a perfectly fine longer announcement here",
			wantErr: ErrBroadcastEmpty,
		},
		{
			name:    "empty content",
			subject: "Weekly deals",
			content: "",
			wantErr: ErrBroadcastEmpty,
		},
		{
			name:    "banned word in subject",
			subject: "Totally not a SCAM",
			content: "our new shelving range is finally back in stock",
			wantErr: ErrBroadcastUnsafe,
		},
		{
			name:    "banned word in content",
			subject: "Weekly deals",
			content: "this is definitely not spam we promise honestly",
			wantErr: ErrBroadcastUnsafe,
		},
		{
			name:    "script tag in content",
			subject: "Weekly deals",
			content: "check our <script>alert(1)</script> great shelving prices today",
			wantErr: ErrBroadcastUnsafe,
		},
		{
			name:    "event handler attribute",
			subject: "Weekly deals",
			content: `big news <img src=x onerror=alert(1)> about our camping range today`,
			wantErr: ErrBroadcastUnsafe,
		},
		{
			name:    "too few words",
			subject: "Weekly deals",
			content: "<p>big sale now</p>",
			wantErr: ErrBroadcastTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SendBroadcast(context.Background(), domain.BroadcastRequest{
				Subject: tt.subject,
				Content: tt.content,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContainsBannedWordIsCaseInsensitive(t *testing.T) {
	assert.True(t, containsBannedWord("Fake clearance"))
	assert.True(t, containsBannedWord("FAKE clearance"))
	assert.False(t, containsBannedWord("new camping gear"))
}
