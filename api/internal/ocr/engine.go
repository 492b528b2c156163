package ocr

import (
	"context"
	"sync"
)

// Engine transcribes a scoreboard screenshot into raw text, one visual line
// per output line. Providers do no parsing; structure is recovered later.
type Engine interface {
	Name() string
	GetModel() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Manager routes each chat to its chosen engine, falling back to the
// default. Safe for concurrent use.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
