package mocks

import (
	"github.com/brettbedarf/nsshell"
	"github.com/stretchr/testify/mock"
)

// MockSink implements nsshell.Sink for testing across packages
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Write(text string) {
	m.Called(text)
}

func (m *MockSink) EraseLast() {
	m.Called()
}

func (m *MockSink) Clear() {
	m.Called()
}

var _ nsshell.Sink = (*MockSink)(nil)

// MockKeyHandler implements nsshell.KeyHandler for testing across packages
type MockKeyHandler struct {
	mock.Mock
}

func (m *MockKeyHandler) HandleKey(ev nsshell.KeyEvent) {
	m.Called(ev)
}

var _ nsshell.KeyHandler = (*MockKeyHandler)(nil)
