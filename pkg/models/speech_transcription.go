package models

import (
	"encoding/base64"
	"fmt"

	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/sirupsen/logrus"
)

type AudioDataReq struct {
	Audio *string `json:"audio"`
}

func transcriptionMsg(text string, isError bool) map[string]interface{} {
	msg := map[string]interface{}{"text": text}
	if isError {
		msg["error"] = true
	}
	return msg
}

// StartTranscription replaces any running recognizer of the connection
// with a new one.
func (m *SpeechModel) StartTranscription(connId string) {
	log := m.logger.WithFields(logrus.Fields{
		"connId": connId,
		"method": "StartTranscription",
	})
	c := m.get(connId)
	if c == nil {
		log.Warnln("unknown connection")
		return
	}

	if old := c.takeStream(); old != nil {
		if err := old.Close(); err != nil {
			log.WithError(err).Warnln("failed to close previous stream")
		}
	}

	stream, err := m.speech.CreateTranscription(c.ctx, connId, m.app.AzureSpeech.Language)
	if err != nil {
		log.WithError(err).Errorln("failed to start transcription")
		c.emitter.Emit(EventTranscription, transcriptionMsg(err.Error(), true))
		return
	}

	c.mu.Lock()
	if c.ctx.Err() != nil {
		// disconnected while the recognizer was starting
		c.mu.Unlock()
		_ = stream.Close()
		return
	}
	c.stream = stream
	c.mu.Unlock()

	go m.watchStream(connId, c, stream)
	c.emitter.Emit(EventTranscription, transcriptionMsg("Transcription started. Speak now...", false))
}

// HandleAudio pushes a base64 encoded PCM chunk into the recognizer.
func (m *SpeechModel) HandleAudio(connId string, req *AudioDataReq) {
	log := m.logger.WithField("connId", connId)
	c := m.get(connId)
	if c == nil {
		log.Warnln("audio received for unknown connection")
		return
	}

	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()
	if stream == nil {
		log.Debugln("no active transcription, dropping audio")
		return
	}
	if req == nil || req.Audio == nil {
		log.Warnln("audio_data without audio field")
		return
	}

	chunk, err := base64.StdEncoding.DecodeString(*req.Audio)
	if err != nil {
		log.WithError(err).Warnln("invalid base64 audio")
		return
	}

	if _, err = stream.Write(chunk); err != nil {
		log.WithError(err).Errorln("failed to write audio")
		c.emitter.Emit(EventTranscription, transcriptionMsg(fmt.Sprintf("Audio stream error: %s", err.Error()), true))
	}
}

func (m *SpeechModel) StopTranscription(connId string) {
	log := m.logger.WithField("connId", connId)
	c := m.get(connId)
	if c == nil {
		log.Warnln("stop requested for unknown connection")
		return
	}

	if stream := c.takeStream(); stream != nil {
		if err := stream.Close(); err != nil {
			log.WithError(err).Warnln("failed to close transcription stream")
		}
	}
	c.emitter.Emit(EventTranscription, transcriptionMsg("Transcription stopped.", false))
}

func (m *SpeechModel) watchStream(connId string, c *speechConn, stream insights.TranscriptionStream) {
	events := stream.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev != nil {
				m.handleEvent(connId, c, ev)
			}
		case <-stream.Done():
			// Close stops the recognizer first, so its last events are already queued
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					if ev != nil {
						m.handleEvent(connId, c, ev)
					}
				default:
					return
				}
			}
		}
	}
}

func (m *SpeechModel) handleEvent(connId string, c *speechConn, ev *insights.TranscriptionEvent) {
	switch ev.Type {
	case insights.EventRecognizing:
		c.emitter.Emit(EventInterimTranscription, map[string]string{"text": ev.Text})

	case insights.EventRecognized:
		if ev.Text == "" {
			return
		}
		c.mu.Lock()
		c.query = append(c.query, ev.Text)
		c.mu.Unlock()

		c.emitter.Emit(EventTranscription, transcriptionMsg(ev.Text, false))
		_ = m.natsService.PublishTranscription(connId, m.app.AzureSpeech.Language, ev.Text)

	case insights.EventNoMatch:
		c.emitter.Emit(EventTranscription, transcriptionMsg("No speech could be recognized", false))

	case insights.EventCanceled:
		msg := fmt.Sprintf("Recognition canceled: %s. Error details: %s", ev.Reason, ev.ErrorDetails)
		c.emitter.Emit(EventTranscription, transcriptionMsg(msg, true))

	case insights.EventSessionStarted:
		c.emitter.Emit(EventDebug, map[string]string{"message": "Speech session started"})

	case insights.EventSessionStopped:
		c.emitter.Emit(EventDebug, map[string]string{"message": "Speech session stopped"})

	case insights.EventSpeechStarted:
		c.emitter.Emit(EventDebug, map[string]string{"message": "Speech detected, listening..."})
	}
}
