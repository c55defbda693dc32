package models

import (
	"context"
	"strings"
	"sync"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/services/nats"
	"github.com/sirupsen/logrus"
)

// socket events sent to clients
const (
	EventTranscription        = "transcription"
	EventInterimTranscription = "interim_transcription"
	EventDebug                = "debug"
	EventBotText              = "bot_text"
	EventBotTextEnd           = "bot_text_end"
	EventBotAudio             = "bot_audio"
	EventBotAudioEnd          = "bot_audio_end"
)

// SocketEmitter sends one event to a single socket connection.
type SocketEmitter interface {
	Emit(event string, data interface{})
}

// speechConn is the state of one socket connection. A nil stream means no
// recognizer is running.
type speechConn struct {
	mu      sync.Mutex
	emitter SocketEmitter
	stream  insights.TranscriptionStream
	query   []string

	ctx    context.Context
	cancel context.CancelFunc
}

func (c *speechConn) takeStream() insights.TranscriptionStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stream
	c.stream = nil
	return s
}

func (c *speechConn) takeQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := strings.Join(c.query, " ")
	c.query = nil
	return q
}

// SpeechModel bridges socket connections to live transcription sessions and
// speaks chat answers back. Every connection owns its recognizer, events of
// a recognizer only reach that connection.
type SpeechModel struct {
	app         *config.AppConfig
	speech      insights.SpeechProvider
	synthesizer insights.Synthesizer
	chatModel   *ChatModel
	natsService *natsservice.NatsService
	logger      *logrus.Entry

	mu    sync.RWMutex
	conns map[string]*speechConn
}

func NewSpeechModel(app *config.AppConfig, speech insights.SpeechProvider, synthesizer insights.Synthesizer, cm *ChatModel, ns *natsservice.NatsService) *SpeechModel {
	if app == nil {
		app = config.GetConfig()
	}
	if ns == nil {
		ns = natsservice.New(app)
	}

	return &SpeechModel{
		app:         app,
		speech:      speech,
		synthesizer: synthesizer,
		chatModel:   cm,
		natsService: ns,
		logger:      app.Logger.WithField("model", "speech"),
		conns:       make(map[string]*speechConn),
	}
}

// Register adds a freshly connected socket.
func (m *SpeechModel) Register(connId string, emitter SocketEmitter) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &speechConn{
		emitter: emitter,
		ctx:     ctx,
		cancel:  cancel,
	}

	m.mu.Lock()
	old := m.conns[connId]
	m.conns[connId] = c
	m.mu.Unlock()

	if old != nil {
		m.release(connId, old)
	}
	m.logger.WithField("connId", connId).Infoln("client connected")
}

// Unregister stops everything the connection still runs and forgets it.
func (m *SpeechModel) Unregister(connId string) {
	m.mu.Lock()
	c, ok := m.conns[connId]
	delete(m.conns, connId)
	m.mu.Unlock()

	if !ok {
		return
	}
	m.release(connId, c)
	m.logger.WithField("connId", connId).Infoln("client disconnected")
}

func (m *SpeechModel) release(connId string, c *speechConn) {
	c.cancel()
	if s := c.takeStream(); s != nil {
		if err := s.Close(); err != nil {
			m.logger.WithError(err).WithField("connId", connId).Warnln("failed to close transcription stream")
		}
	}
}

func (m *SpeechModel) get(connId string) *speechConn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conns[connId]
}

// ActiveConnections returns the number of registered sockets.
func (m *SpeechModel) ActiveConnections() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Shutdown releases every connection.
func (m *SpeechModel) Shutdown() {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[string]*speechConn)
	m.mu.Unlock()

	for id, c := range conns {
		m.release(id, c)
	}
}
