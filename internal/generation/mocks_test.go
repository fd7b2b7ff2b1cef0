package generation

import (
	"context"
	"sync"

	"scene-prompt-studio/internal/prompt"
)

type mockRunner struct {
	mu      sync.Mutex
	calls   int
	parts   []prompt.Part
	ctxErr  error
	release chan struct{}
	outcome Outcome
}

func (m *mockRunner) Execute(ctx context.Context, parts []prompt.Part) Outcome {
	m.mu.Lock()
	m.calls++
	m.parts = parts
	m.ctxErr = ctx.Err()
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	return m.outcome
}

func (m *mockRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockRunner) Parts() []prompt.Part {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parts
}

type mockRemote struct {
	text  string
	err   error
	panic any
	calls int
	model string
}

func (m *mockRemote) GenerateText(ctx context.Context, model string, parts []prompt.Part) (string, error) {
	m.calls++
	m.model = model
	if m.panic != nil {
		panic(m.panic)
	}
	return m.text, m.err
}

type mockFile struct {
	mimeType string
	data     []byte
	err      error
}

func (m mockFile) Name() string     { return "style.png" }
func (m mockFile) MimeType() string { return m.mimeType }

func (m mockFile) ReadAll(ctx context.Context) ([]byte, error) {
	return m.data, m.err
}
