package chathub

import (
	"strconv"
	"strings"

	"amoura/backend/internal/models"

	"go.uber.org/zap"
)

// StartPubSubListener запускає goroutine, яка слухає Redis Pub/Sub і
// перетворює канали Redis на топіки підписок.
func (m *ManagerService) StartPubSubListener() {
	pubsub := m.Storage.SubscribeChannels()
	if pubsub == nil {
		// Без Redis хаб працює лише в межах одного інстанса
		zap.L().Warn("pubsub unavailable, cross-instance broadcast disabled")
		return
	}

	go func() {
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			topic, ok := channelToTopic(msg.Channel)
			if !ok {
				zap.L().Warn("message on unknown redis channel", zap.String("channel", msg.Channel))
				continue
			}
			m.BroadcastCh <- Broadcast{Topic: topic, Body: []byte(msg.Payload)}
		}
	}()
}

// channelToTopic мапить ім'я Redis-каналу на топік підписки:
// "chat:{roomId}" -> "/sub/chat/{roomId}", "matching:status" -> лобі-топік.
func channelToTopic(channel string) (string, bool) {
	if channel == "matching:status" {
		return models.MatchingStatusTopic, true
	}
	if id, found := strings.CutPrefix(channel, "chat:"); found {
		roomID, err := strconv.ParseInt(id, 10, 64)
		if err != nil || roomID <= 0 {
			return "", false
		}
		return models.ChatTopic(roomID), true
	}
	return "", false
}
