package controllers

import (
	"github.com/bookmate-ai/bookmate-server/pkg/models"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/socketio"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// socket events sent by clients
const (
	eventStartTranscription = "start_transcription"
	eventAudioData          = "audio_data"
	eventStopTranscription  = "stop_transcription"
	eventSubmitQuery        = "submit_query"
	eventAsk                = "ask"
)

// SocketEnvelope wraps every socket message in both directions.
type SocketEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type WebsocketController struct {
	SpeechModel *models.SpeechModel
	logger      *logrus.Entry
}

func NewWebsocketController(sm *models.SpeechModel, logger *logrus.Logger) *WebsocketController {
	return &WebsocketController{
		SpeechModel: sm,
		logger:      logger.WithField("controller", "websocket"),
	}
}

// kwsEmitter sends envelopes to a single socket.
type kwsEmitter struct {
	kws    *socketio.Websocket
	logger *logrus.Entry
}

func (e *kwsEmitter) Emit(event string, data interface{}) {
	if !e.kws.IsAlive() {
		return
	}
	msg, err := marshalEnvelope(event, data)
	if err != nil {
		e.logger.WithError(err).WithField("event", event).Errorln("failed to marshal socket message")
		return
	}
	e.kws.Emit(msg, socketio.TextMessage)
}

func marshalEnvelope(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SocketEnvelope{Event: event, Data: raw})
}

func (wc *WebsocketController) HandleWebSocket(cnf websocket.Config) func(*fiber.Ctx) error {
	return socketio.New(func(kws *socketio.Websocket) {
		wc.SpeechModel.Register(kws.UUID, &kwsEmitter{
			kws:    kws,
			logger: wc.logger.WithField("connId", kws.UUID),
		})
	}, cnf)
}

// SetupSocketListeners registers the global socket event listeners. It must
// be called once.
func (wc *WebsocketController) SetupSocketListeners() {
	socketio.On(socketio.EventMessage, func(ep *socketio.EventPayload) {
		wc.dispatch(ep.Kws.UUID, ep.Data)
	})

	// On disconnect event
	socketio.On(socketio.EventDisconnect, func(ep *socketio.EventPayload) {
		wc.SpeechModel.Unregister(ep.Kws.UUID)
	})

	// This event is called when the server disconnects the user actively with .Close() method
	socketio.On(socketio.EventClose, func(ep *socketio.EventPayload) {
		wc.SpeechModel.Unregister(ep.Kws.UUID)
	})

	socketio.On(socketio.EventError, func(ep *socketio.EventPayload) {
		wc.logger.WithError(ep.Error).WithField("connId", ep.Kws.UUID).Debugln("socket error")
	})
}

// dispatch routes one inbound envelope to the speech model. Chat answers
// are produced in the background so audio keeps flowing meanwhile.
func (wc *WebsocketController) dispatch(connId string, raw []byte) {
	log := wc.logger.WithField("connId", connId)

	env := new(SocketEnvelope)
	if err := json.Unmarshal(raw, env); err != nil {
		log.WithError(err).Warnln("invalid socket message")
		return
	}

	switch env.Event {
	case eventStartTranscription:
		wc.SpeechModel.StartTranscription(connId)

	case eventAudioData:
		req := new(models.AudioDataReq)
		if !decodeData(env, req, log) {
			return
		}
		wc.SpeechModel.HandleAudio(connId, req)

	case eventStopTranscription:
		wc.SpeechModel.StopTranscription(connId)

	case eventSubmitQuery:
		req := new(models.SubmitQueryReq)
		if !decodeData(env, req, log) {
			return
		}
		go wc.SpeechModel.SubmitQuery(connId, req)

	case eventAsk:
		req := new(models.AskReq)
		if !decodeData(env, req, log) {
			return
		}
		go wc.SpeechModel.Ask(connId, req)

	default:
		log.WithField("event", env.Event).Warnln("unknown socket event")
	}
}

func decodeData(env *SocketEnvelope, out interface{}, log *logrus.Entry) bool {
	if len(env.Data) == 0 {
		return true
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		log.WithError(err).WithField("event", env.Event).Warnln("invalid event data")
		return false
	}
	return true
}
