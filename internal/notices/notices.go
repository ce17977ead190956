// Package notices provides localized system notice strings for the room
// event timeline. Built-in defaults cover "en" and "ko"; JSON files can
// override or extend them.
package notices

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Notice keys used by the event announcer.
const (
	KeySecretStart = "event.secret.start"
	KeySecretEnd   = "event.secret.end"
	KeyCupidStart  = "event.cupid.start"
	KeyCupidEnd    = "event.cupid.end"
	KeyRoomClosed  = "event.room.closed"
	KeyMatchFound  = "match.found"
)

var defaults = map[string]map[string]string{
	"en": {
		KeySecretStart: "The secret message hour has begun. Leave an anonymous note for someone.",
		KeySecretEnd:   "The secret message hour is over. Notes are on their way.",
		KeyCupidStart:  "Cupid's arrow is live. Pick the one person you want to keep talking to.",
		KeyCupidEnd:    "Arrows are in. The room closes in one hour.",
		KeyRoomClosed:  "This room has ended. Mutual picks can keep chatting one on one.",
		KeyMatchFound:  "A room has been assembled. Say hello!",
	},
	"ko": {
		KeySecretStart: "시크릿 메시지 타임이 시작됐어요. 익명의 쪽지를 남겨보세요.",
		KeySecretEnd:   "시크릿 메시지 타임이 끝났어요. 쪽지가 전달되는 중이에요.",
		KeyCupidStart:  "큐피드의 화살이 열렸어요. 계속 이야기하고 싶은 한 사람을 골라주세요.",
		KeyCupidEnd:    "화살이 모두 모였어요. 한 시간 뒤 방이 닫혀요.",
		KeyRoomClosed:  "이 방은 종료되었어요. 서로 선택한 두 사람은 1:1로 이어져요.",
		KeyMatchFound:  "새로운 방이 만들어졌어요. 인사해 보세요!",
	},
}

// Localizer resolves notice keys to strings for a language.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer returns a Localizer seeded with the built-in defaults.
func NewLocalizer() *Localizer {
	l := &Localizer{translations: make(map[string]map[string]string)}
	for lang, entries := range defaults {
		m := make(map[string]string, len(entries))
		for k, v := range entries {
			m[k] = v
		}
		l.translations[lang] = m
	}
	return l
}

// LoadDir overlays translations from JSON files in dir. Each file is named
// with its language code (e.g. "en.json") and holds a flat key→string map.
func (l *Localizer) LoadDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read notices directory: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		lang := strings.TrimSuffix(file.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read notices file %s: %w", file.Name(), err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("failed to parse notices file %s: %w", file.Name(), err)
		}

		if l.translations[lang] == nil {
			l.translations[lang] = make(map[string]string)
		}
		for k, v := range entries {
			l.translations[lang][k] = v
		}
	}
	return nil
}

// GetString returns the notice for a key and language, falling back to "en"
// and finally to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if entries, ok := l.translations[lang]; ok {
		if value, ok := entries[key]; ok {
			return value
		}
	}
	if lang != "en" {
		if entries, ok := l.translations["en"]; ok {
			if value, ok := entries[key]; ok {
				return value
			}
		}
	}
	return key
}
