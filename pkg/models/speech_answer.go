package models

import (
	"context"
	"encoding/base64"
	"io"

	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const audioChunkSize = 32 * 1024

type AskReq struct {
	Text      string `json:"text"`
	SessionId string `json:"sessionId"`
	Speak     bool   `json:"speak"`
}

type SubmitQueryReq struct {
	SessionId string `json:"sessionId"`
	Speak     bool   `json:"speak"`
}

// SubmitQuery sends everything recognized since the last submit as a chat
// question.
func (m *SpeechModel) SubmitQuery(connId string, req *SubmitQueryReq) {
	c := m.get(connId)
	if c == nil {
		m.logger.WithField("connId", connId).Warnln("submit for unknown connection")
		return
	}

	query := c.takeQuery()
	if query == "" {
		c.emitter.Emit(EventDebug, map[string]string{"message": "Nothing to submit"})
		return
	}

	m.answer(c, connId, &AskReq{
		Text:      query,
		SessionId: req.SessionId,
		Speak:     req.Speak,
	})
}

// Ask streams the chat answer to the connection and, when requested, speaks
// it sentence by sentence.
func (m *SpeechModel) Ask(connId string, req *AskReq) {
	c := m.get(connId)
	if c == nil {
		m.logger.WithField("connId", connId).Warnln("ask for unknown connection")
		return
	}
	if req.Text == "" {
		c.emitter.Emit(EventDebug, map[string]string{"message": "Empty question"})
		return
	}

	m.answer(c, connId, req)
}

func (m *SpeechModel) answer(c *speechConn, connId string, req *AskReq) {
	id := uuid.NewString()
	log := m.logger.WithFields(logrus.Fields{
		"connId":    connId,
		"sessionId": req.SessionId,
		"answerId":  id,
	})

	var wp *workerpool.WorkerPool
	var splitter *insights.SentenceSplitter
	if req.Speak {
		// one worker keeps the audio in sentence order
		wp = workerpool.New(1)
		splitter = insights.NewSentenceSplitter(m.app.ChatSettings.MinSentenceChars)
	}
	speak := func(sentence string) {
		wp.Submit(func() {
			m.speakSentence(c.ctx, c, id, sentence, log)
		})
	}

	full, err := m.chatModel.StreamAnswer(c.ctx, req.SessionId, req.Text, func(text string) {
		c.emitter.Emit(EventBotText, map[string]string{"id": id, "text": text})
		if splitter != nil {
			for _, sentence := range splitter.Push(text) {
				speak(sentence)
			}
		}
	})

	end := map[string]interface{}{"id": id, "text": full}
	if err != nil {
		log.WithError(err).Errorln("failed to answer")
		end["error"] = err.Error()
	}
	c.emitter.Emit(EventBotTextEnd, end)

	if wp == nil {
		return
	}
	if err == nil {
		if rest := splitter.Flush(); rest != "" {
			speak(rest)
		}
	}
	wp.StopWait()
	c.emitter.Emit(EventBotAudioEnd, map[string]string{"id": id})
}

func (m *SpeechModel) speakSentence(ctx context.Context, c *speechConn, id, sentence string, log *logrus.Entry) {
	if ctx.Err() != nil {
		return
	}

	audio, err := m.synthesizer.SynthesizeText(ctx, sentence)
	if err != nil {
		log.WithError(err).Errorln("speech synthesis failed")
		return
	}
	defer audio.Close()

	buf := make([]byte, audioChunkSize)
	for {
		n, err := io.ReadFull(audio, buf)
		if n > 0 {
			c.emitter.Emit(EventBotAudio, map[string]string{
				"id":    id,
				"audio": base64.StdEncoding.EncodeToString(buf[:n]),
			})
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.WithError(err).Warnln("failed to read synthesized audio")
			}
			return
		}
	}
}
