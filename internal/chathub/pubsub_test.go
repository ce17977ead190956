package chathub

import (
	"testing"

	"amoura/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestChannelToTopic(t *testing.T) {
	tests := []struct {
		channel   string
		wantTopic string
		wantOK    bool
	}{
		{"chat:7", models.ChatTopic(7), true},
		{"matching:status", models.MatchingStatusTopic, true},
		{"chat:abc", "", false},
		{"chat:-1", "", false},
		{"presence:7", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		topic, ok := channelToTopic(tt.channel)
		assert.Equal(t, tt.wantOK, ok, tt.channel)
		assert.Equal(t, tt.wantTopic, topic, tt.channel)
	}
}
