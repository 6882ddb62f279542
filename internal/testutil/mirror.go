package testutil

import (
	"context"
	"sync"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/replica"
)

type MirrorCall struct {
	Kind   replica.Kind
	ID     uint
	Fields replica.Fields
}

// RecordingMirror records mirror calls synchronously.
type RecordingMirror struct {
	mu    sync.Mutex
	calls []MirrorCall
}

func (m *RecordingMirror) Mirror(_ context.Context, kind replica.Kind, id uint, fields replica.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MirrorCall{Kind: kind, ID: id, Fields: fields})
}

func (m *RecordingMirror) Calls() []MirrorCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]MirrorCall(nil), m.calls...)
}

func (m *RecordingMirror) For(kind replica.Kind, id uint) []replica.Fields {
	var fields []replica.Fields
	for _, c := range m.Calls() {
		if c.Kind == kind && c.ID == id {
			fields = append(fields, c.Fields)
		}
	}

	return fields
}
