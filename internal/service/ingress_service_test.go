package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chat-agent-be/internal/pkg/logger"
)

func TestVerifySubscription(t *testing.T) {
	svc := NewIngressService(nil, "secret-token", logger.NewNopLogger())

	tests := []struct {
		name      string
		mode      string
		token     string
		challenge string
		wantEcho  string
		wantOK    bool
	}{
		{"valid handshake", "subscribe", "secret-token", "12345", "12345", true},
		{"wrong token", "subscribe", "guess", "12345", "", false},
		{"wrong mode", "unsubscribe", "secret-token", "12345", "", false},
		{"empty token", "subscribe", "", "12345", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			echo, ok := svc.VerifySubscription(tt.mode, tt.token, tt.challenge)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEcho, echo)
		})
	}
}
