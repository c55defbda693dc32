package natsservice

import (
	"fmt"
)

const (
	EventTranscription = "transcription"
	EventChatExchange  = "chat.exchange"
	EventBookAdded     = "book.added"
	EventBookRemoved   = "book.removed"
)

type TranscriptionEvent struct {
	ConnId string `json:"conn_id"`
	Text   string `json:"text"`
	Lang   string `json:"lang"`
}

type ChatExchangeEvent struct {
	SessionId string `json:"session_id,omitempty"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type BookEvent struct {
	UserId   string `json:"user_id"`
	FileId   string `json:"file_id"`
	FileName string `json:"file_name"`
}

func (s *NatsService) PublishTranscription(connId, lang, text string) error {
	subject := fmt.Sprintf("%s.%s", s.subjects.Transcription, connId)
	return s.publish(subject, EventTranscription, TranscriptionEvent{
		ConnId: connId,
		Text:   text,
		Lang:   lang,
	})
}

func (s *NatsService) PublishChatExchange(sessionId, question, answer string) error {
	id := sessionId
	if id == "" {
		id = "stateless"
	}
	subject := fmt.Sprintf("%s.%s", s.subjects.Chat, id)
	return s.publish(subject, EventChatExchange, ChatExchangeEvent{
		SessionId: sessionId,
		Question:  question,
		Answer:    answer,
	})
}

func (s *NatsService) PublishBookAdded(userId, fileId, fileName string) error {
	return s.publishBook(EventBookAdded, userId, fileId, fileName)
}

func (s *NatsService) PublishBookRemoved(userId, fileId, fileName string) error {
	return s.publishBook(EventBookRemoved, userId, fileId, fileName)
}

func (s *NatsService) publishBook(eventType, userId, fileId, fileName string) error {
	subject := fmt.Sprintf("%s.%s", s.subjects.Library, userId)
	return s.publish(subject, eventType, BookEvent{
		UserId:   userId,
		FileId:   fileId,
		FileName: fileName,
	})
}
