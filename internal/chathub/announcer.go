package chathub

import (
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/models"
	"amoura/backend/internal/notices"
	"amoura/backend/internal/roomphase"
	"amoura/backend/internal/storage"

	"go.uber.org/zap"
)

// Announcer стежить за фазами активних кімнат: на перетині межі публікує
// системне повідомлення в кімнату, після закінчення таймлайну закриває її.
type Announcer struct {
	Storage storage.Storage
	Notices *notices.Localizer
	Lang    string

	// lastPhase — остання побачена фаза кожної кімнати. Перша поява кімнати
	// лише запам'ятовується, щоб після рестарту не повторювати старі анонси.
	lastPhase map[int64]roomphase.Phase
	done      chan struct{}
}

// NewAnnouncer створює Announcer з мовою системних повідомлень за замовчуванням.
func NewAnnouncer(s storage.Storage, n *notices.Localizer, lang string) *Announcer {
	return &Announcer{
		Storage:   s,
		Notices:   n,
		Lang:      lang,
		lastPhase: make(map[int64]roomphase.Phase),
		done:      make(chan struct{}),
	}
}

// Run запускає цикл обходу активних кімнат.
func (a *Announcer) Run() {
	zap.L().Info("event announcer started")
	ticker := time.NewTicker(config.AnnounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.done:
			return
		case now := <-ticker.C:
			a.sweep(now)
		}
	}
}

// Stop зупиняє цикл Run.
func (a *Announcer) Stop() {
	close(a.done)
}

func (a *Announcer) sweep(now time.Time) {
	roomIDs, err := a.Storage.GetActiveRoomIDs()
	if err != nil {
		return
	}

	for _, roomID := range roomIDs {
		room, err := a.Storage.GetRoomByID(roomID)
		if err != nil {
			continue
		}

		phase, _ := roomphase.Resolve(room.CreatedAt, now)
		prev, seen := a.lastPhase[roomID]
		if !seen {
			a.lastPhase[roomID] = phase
			// Кімната, що пережила таймлайн ще до старту (наприклад, під час
			// рестарту), закривається одразу, але без анонсу.
			if phase == roomphase.PhasePostEvent {
				a.closeRoom(roomID)
			}
			continue
		}
		if phase == prev {
			continue
		}
		a.lastPhase[roomID] = phase

		if key, ok := noticeKey(phase); ok {
			a.announce(roomID, a.Notices.GetString(a.Lang, key))
		}

		if phase == roomphase.PhasePostEvent {
			a.closeRoom(roomID)
		}
	}
}

// closeRoom закриває кімнату та прибирає її з відстеження фаз.
func (a *Announcer) closeRoom(roomID int64) {
	if err := a.Storage.CloseRoom(roomID); err != nil {
		zap.L().Error("failed to close expired room", zap.Int64("roomId", roomID), zap.Error(err))
		return
	}
	delete(a.lastPhase, roomID)
	zap.L().Info("room closed", zap.Int64("roomId", roomID))
}

// announce зберігає системне повідомлення (SenderID 0) і розсилає його в кімнату.
func (a *Announcer) announce(roomID int64, text string) {
	history := models.ChatHistory{
		ChatRoomID: roomID,
		SenderID:   0,
		Nickname:   "cupid",
		Message:    text,
		CreatedAt:  time.Now(),
	}
	if err := a.Storage.SaveMessage(&history); err != nil {
		return
	}
	if err := a.Storage.PublishToRoom(roomID, history.Wire()); err != nil {
		zap.L().Error("failed to publish notice", zap.Int64("roomId", roomID), zap.Error(err))
	}
}

// noticeKey мапить фазу, в яку щойно перейшла кімната, на ключ повідомлення.
func noticeKey(phase roomphase.Phase) (string, bool) {
	switch phase {
	case roomphase.PhaseSecret:
		return notices.KeySecretStart, true
	case roomphase.PhaseCupidInterim:
		return notices.KeySecretEnd, true
	case roomphase.PhaseCupidMain:
		return notices.KeyCupidStart, true
	case roomphase.PhaseCountdownToEnd:
		return notices.KeyCupidEnd, true
	case roomphase.PhasePostEvent:
		return notices.KeyRoomClosed, true
	default:
		return "", false
	}
}
