package chathub

import (
	"encoding/json"
	"time"

	"amoura/backend/internal/models"
	"amoura/backend/internal/storage"

	"go.uber.org/zap"
)

// ManagerService — центральний диспетчер realtime-з'єднань. Усі мутації
// Clients та підписок відбуваються лише в goroutine Run, тому блокування
// не потрібні.
type ManagerService struct {
	Clients map[int64]Client

	// Channels
	IncomingCh     chan InboundFrame
	SubscribeCh    chan SubscribeRequest
	MatchRequestCh chan models.SearchRequest
	BroadcastCh    chan Broadcast

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage storage.Storage

	// subs: топік -> підписані клієнти (ключ — memberId)
	subs map[string]map[int64]Client
}

// NewManagerService створює хаб із проініціалізованими каналами.
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Clients:        make(map[int64]Client),
		IncomingCh:     make(chan InboundFrame),
		SubscribeCh:    make(chan SubscribeRequest),
		MatchRequestCh: make(chan models.SearchRequest),
		BroadcastCh:    make(chan Broadcast, 64),
		RegisterCh:     make(chan Client),
		UnregisterCh:   make(chan Client),
		Storage:        s,
		subs:           make(map[string]map[int64]Client),
	}
}

// Run — головний цикл хаба.
func (m *ManagerService) Run() {
	m.StartPubSubListener() // Запускаємо слухача Redis

	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetMemberID()] = client
			// Handshake: клієнт вважає себе підключеним лише після CONNECTED
			client.GetSendChannel() <- models.Frame{Type: models.FrameConnected}
			zap.L().Info("client registered", zap.Int64("memberId", client.GetMemberID()))

		case client := <-m.UnregisterCh:
			m.removeClient(client)

		case req := <-m.SubscribeCh:
			m.handleSubscribe(req)

		case in := <-m.IncomingCh:
			m.handleIncoming(in)

		case b := <-m.BroadcastCh:
			m.fanOut(b)
		}
	}
}

func (m *ManagerService) removeClient(client Client) {
	id := client.GetMemberID()
	if _, ok := m.Clients[id]; !ok {
		return
	}
	delete(m.Clients, id)
	for topic, clients := range m.subs {
		delete(clients, id)
		if len(clients) == 0 {
			delete(m.subs, topic)
		}
	}
	client.Close()
	zap.L().Info("client unregistered", zap.Int64("memberId", id))
}

func (m *ManagerService) handleSubscribe(req SubscribeRequest) {
	id := req.Client.GetMemberID()
	if req.Unsubscribe {
		if clients, ok := m.subs[req.Destination]; ok {
			delete(clients, id)
			if len(clients) == 0 {
				delete(m.subs, req.Destination)
			}
		}
		return
	}
	if m.subs[req.Destination] == nil {
		m.subs[req.Destination] = make(map[int64]Client)
	}
	m.subs[req.Destination][id] = req.Client
}

// handleIncoming маршрутизує SEND-фрейм за його destination.
func (m *ManagerService) handleIncoming(in InboundFrame) {
	dest := in.Frame.Destination

	if roomID, ok := models.ParseSendMessageDest(dest); ok {
		m.handleSendMessage(in, roomID)
		return
	}
	if dest == models.ChatMessageDest {
		m.handleMessageCommand(in)
		return
	}

	zap.L().Warn("frame to unknown destination",
		zap.String("destination", dest),
		zap.Int64("memberId", in.Client.GetMemberID()))
}

func (m *ManagerService) handleSendMessage(in InboundFrame, roomID int64) {
	var req models.SendMessageRequest
	if err := json.Unmarshal(in.Frame.Body, &req); err != nil {
		zap.L().Warn("malformed sendMessage body", zap.Error(err))
		return
	}

	// SenderID завжди береться з автентифікованого з'єднання, не з тіла
	history := models.ChatHistory{
		ChatRoomID: roomID,
		SenderID:   in.Client.GetMemberID(),
		Nickname:   req.Nickname,
		Message:    req.Message,
		CreatedAt:  time.Now(),
	}
	if err := m.Storage.SaveMessage(&history); err != nil {
		return
	}

	// chatId присвоєно; розсилаємо через Redis, щоб охопити всі інстанси
	if err := m.Storage.PublishToRoom(roomID, history.Wire()); err != nil {
		zap.L().Error("failed to publish message", zap.Int64("roomId", roomID), zap.Error(err))
	}
}

func (m *ManagerService) handleMessageCommand(in InboundFrame) {
	var req models.DeleteMessageRequest
	if err := json.Unmarshal(in.Frame.Body, &req); err != nil || req.Type != "delete" {
		zap.L().Warn("malformed message command", zap.Error(err))
		return
	}

	roomID, err := m.Storage.MarkMessageDeleted(req.MessageID, in.Client.GetMemberID())
	if err != nil {
		zap.L().Warn("delete rejected",
			zap.Int64("messageId", req.MessageID),
			zap.Int64("memberId", in.Client.GetMemberID()),
			zap.Error(err))
		return
	}
	if err := m.Storage.PublishToRoom(roomID, req); err != nil {
		zap.L().Error("failed to publish delete", zap.Int64("roomId", roomID), zap.Error(err))
	}
}

// fanOut доставляє тіло всім підписникам топіка.
func (m *ManagerService) fanOut(b Broadcast) {
	frame := models.Frame{
		Type:        models.FrameMessage,
		Destination: b.Topic,
		Body:        b.Body,
	}
	for _, client := range m.subs[b.Topic] {
		select {
		case client.GetSendChannel() <- frame:
		default:
			// Повільний клієнт: буфер переповнено, відключаємо
			m.removeClient(client)
		}
	}
}
