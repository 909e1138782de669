package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-assistant/internal/application"
	"map-assistant/internal/domain"
	"map-assistant/internal/intent"
)

type mockAudioSource struct {
	commands [][]byte
	index    int
}

func (m *mockAudioSource) Start(_ context.Context) error { return nil }
func (m *mockAudioSource) Stop() error                   { return nil }
func (m *mockAudioSource) Name() string                  { return "mock" }

func (m *mockAudioSource) NextCommand(_ context.Context) ([]byte, error) {
	if m.index >= len(m.commands) {
		return nil, domain.ErrSourceClosed
	}
	audio := m.commands[m.index]
	m.index++
	return audio, nil
}

type mockSTT struct {
	transcriptions map[string]string
	calls          int
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	m.calls++
	if text, ok := m.transcriptions[string(audio)]; ok {
		return text, nil
	}
	return "", errors.New("inaudible")
}

type dispatched struct {
	text string
	cmd  domain.Command
}

type mockDispatcher struct {
	mu   sync.Mutex
	sent []dispatched
	err  error
}

func (m *mockDispatcher) Dispatch(_ context.Context, text string, cmd domain.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, dispatched{text: text, cmd: cmd})
	return nil
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAssistant_ProcessCommands(t *testing.T) {
	audioSource := &mockAudioSource{
		commands: [][]byte{
			[]byte("clip-route"),
			[]byte("clip-zoom"),
			[]byte(domain.TextCommandPrefix + "add marker paris, berlin and rome"),
			[]byte("clip-noise"),
			[]byte("clip-garbage"),
		},
	}

	stt := &mockSTT{
		transcriptions: map[string]string{
			"clip-route": " Route from Paris to Berlin ",
			"clip-zoom":  "show me tokyo",
			"clip-noise": "asdkjasd",
		},
	}

	dispatcher := &mockDispatcher{}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(
		audioSource,
		stt,
		intent.NewParser(intent.DefaultRules()),
		dispatcher,
		notifier,
		discardLogger(),
	)

	err := assistant.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceClosed)

	assert.Equal(t, 4, stt.calls, "text commands must bypass speech-to-text")
	require.Len(t, dispatcher.sent, 3)
	assert.Equal(t, domain.NewCommand(domain.CommandRoute, "paris", "berlin"), dispatcher.sent[0].cmd)
	assert.Equal(t, domain.NewCommand(domain.CommandZoom, "tokyo"), dispatcher.sent[1].cmd)
	assert.Equal(t, domain.NewCommand(domain.CommandMarker, "paris", "berlin", "rome"), dispatcher.sent[2].cmd)
	assert.Equal(t, "add marker paris, berlin and rome", dispatcher.sent[2].text)

	assert.Equal(t, []string{
		"route: paris, berlin",
		"zoom: tokyo",
		"marker: paris, berlin, rome",
	}, notifier.messages)
}

func TestAssistant_DispatchErrorIsNotified(t *testing.T) {
	audioSource := &mockAudioSource{
		commands: [][]byte{[]byte(domain.TextCommandPrefix + "satellite off")},
	}
	dispatcher := &mockDispatcher{err: errors.New("map offline")}
	notifier := &recordingNotifier{}

	assistant := application.NewAssistant(
		audioSource,
		&application.NoopSTT{},
		intent.NewParser(nil),
		dispatcher,
		notifier,
		discardLogger(),
	)

	err := assistant.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrSourceClosed)

	assert.Empty(t, dispatcher.sent)
	assert.Equal(t, []string{"Error: map offline"}, notifier.messages)
}

func TestAssistant_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assistant := application.NewAssistant(
		&mockAudioSource{},
		&application.NoopSTT{},
		intent.NewParser(nil),
		&mockDispatcher{},
		&application.NoopNotifier{},
		discardLogger(),
	)

	assert.ErrorIs(t, assistant.Run(ctx), context.Canceled)
}

func TestLogDispatcher(t *testing.T) {
	d := &application.LogDispatcher{Logger: discardLogger()}

	err := d.Dispatch(context.Background(), "reset", domain.NewCommand(domain.CommandReset))
	assert.NoError(t, err)
}
