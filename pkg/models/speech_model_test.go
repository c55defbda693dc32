package models

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/services/store"
)

type emitted struct {
	event string
	data  interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
	notify chan struct{}
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{notify: make(chan struct{}, 100)}
}

func (e *recordingEmitter) Emit(event string, data interface{}) {
	e.mu.Lock()
	e.events = append(e.events, emitted{event: event, data: data})
	e.mu.Unlock()
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *recordingEmitter) all() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}

// waitFor blocks until an event with the name has been emitted.
func (e *recordingEmitter) waitFor(t *testing.T, event string) emitted {
	t.Helper()
	return e.waitForText(t, event, "")
}

// waitForText is waitFor limited to events carrying text, any text when
// text is empty.
func (e *recordingEmitter) waitForText(t *testing.T, event, text string) emitted {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		for _, ev := range e.all() {
			if ev.event == event && (text == "" || textOf(ev) == text) {
				return ev
			}
		}
		select {
		case <-e.notify:
		case <-deadline:
			t.Fatalf("event %s was not emitted, got %+v", event, e.all())
		}
	}
}

func textOf(ev emitted) string {
	switch d := ev.data.(type) {
	case map[string]interface{}:
		s, _ := d["text"].(string)
		return s
	case map[string]string:
		return d["text"]
	}
	return ""
}

type fakeStream struct {
	mu      sync.Mutex
	written []byte
	events  chan *insights.TranscriptionEvent
	done    chan struct{}
	once    sync.Once
	closed  bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		events: make(chan *insights.TranscriptionEvent, 10),
		done:   make(chan struct{}),
	}
}

func (s *fakeStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("stream closed")
	}
	s.written = append(s.written, p...)
	return len(p), nil
}

func (s *fakeStream) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	return nil
}

func (s *fakeStream) Events() <-chan *insights.TranscriptionEvent { return s.events }
func (s *fakeStream) Done() <-chan struct{}                       { return s.done }

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSpeech struct {
	mu      sync.Mutex
	err     error
	streams []*fakeStream
}

func (f *fakeSpeech) CreateTranscription(_ context.Context, _, _ string) (insights.TranscriptionStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := newFakeStream()
	f.streams = append(f.streams, s)
	return s, nil
}

type fakeSynth struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSynth) SynthesizeText(_ context.Context, text string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return io.NopCloser(strings.NewReader("pcm:" + text)), nil
}

func newTestSpeechModel(t *testing.T, speech *fakeSpeech, chat *fakeChat) (*SpeechModel, *fakeSynth) {
	t.Helper()
	app := newTestAppConfig(t)
	synth := &fakeSynth{}
	cm := NewChatModel(app, store.NewMemoryStore(), chat, nil)
	return NewSpeechModel(app, speech, synth, cm, nil), synth
}

func TestSpeechModel_Transcription(t *testing.T) {
	speech := &fakeSpeech{}
	m, _ := newTestSpeechModel(t, speech, &fakeChat{})
	em := newRecordingEmitter()
	m.Register("c1", em)

	m.StartTranscription("c1")
	if got := textOf(em.waitFor(t, EventTranscription)); got != "Transcription started. Speak now..." {
		t.Fatalf("unexpected start message %q", got)
	}
	stream := speech.streams[0]

	audio := base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4})
	m.HandleAudio("c1", &AudioDataReq{Audio: &audio})
	bad := "%%%"
	m.HandleAudio("c1", &AudioDataReq{Audio: &bad})
	m.HandleAudio("c1", &AudioDataReq{})
	if string(stream.written) != string([]byte{1, 2, 3, 4}) {
		t.Errorf("unexpected audio %v", stream.written)
	}

	stream.events <- &insights.TranscriptionEvent{Type: insights.EventRecognizing, Text: "hel"}
	stream.events <- &insights.TranscriptionEvent{Type: insights.EventRecognized, Text: "hello"}
	if got := textOf(em.waitFor(t, EventInterimTranscription)); got != "hel" {
		t.Errorf("unexpected interim text %q", got)
	}
	em.waitForText(t, EventTranscription, "hello")

	c := m.get("c1")
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()
	if len(query) != 1 || query[0] != "hello" {
		t.Errorf("recognized text must be added to the query, got %v", query)
	}

	m.StopTranscription("c1")
	if !stream.isClosed() {
		t.Error("stop must close the stream")
	}
	last := em.all()[len(em.all())-1]
	if textOf(last) != "Transcription stopped." {
		t.Errorf("unexpected stop message %+v", last)
	}
}

func TestSpeechModel_RestartAndDisconnect(t *testing.T) {
	speech := &fakeSpeech{}
	m, _ := newTestSpeechModel(t, speech, &fakeChat{})
	m.Register("c1", newRecordingEmitter())

	m.StartTranscription("c1")
	m.StartTranscription("c1")
	if len(speech.streams) != 2 {
		t.Fatalf("expected two streams, got %d", len(speech.streams))
	}
	if !speech.streams[0].isClosed() {
		t.Error("starting again must close the previous stream")
	}

	m.Unregister("c1")
	if !speech.streams[1].isClosed() {
		t.Error("disconnect must close the running stream")
	}
	if m.ActiveConnections() != 0 {
		t.Error("connection must be removed")
	}

	// handlers for a removed connection are ignored
	m.StopTranscription("c1")
	m.StartTranscription("c1")
	if len(speech.streams) != 2 {
		t.Error("no stream may be created for a removed connection")
	}
}

func TestSpeechModel_MissingCredentials(t *testing.T) {
	speech := &fakeSpeech{err: errors.New("Missing Azure Speech credentials.")}
	m, _ := newTestSpeechModel(t, speech, &fakeChat{})
	em := newRecordingEmitter()
	m.Register("c1", em)

	m.StartTranscription("c1")
	ev := em.waitFor(t, EventTranscription)
	data := ev.data.(map[string]interface{})
	if data["error"] != true || data["text"] != "Missing Azure Speech credentials." {
		t.Errorf("unexpected error event %+v", data)
	}
}

func TestSpeechModel_EventsStayOnTheirConnection(t *testing.T) {
	speech := &fakeSpeech{}
	m, _ := newTestSpeechModel(t, speech, &fakeChat{})
	em1, em2 := newRecordingEmitter(), newRecordingEmitter()
	m.Register("c1", em1)
	m.Register("c2", em2)

	m.StartTranscription("c1")
	speech.streams[0].events <- &insights.TranscriptionEvent{Type: insights.EventNoMatch}
	em1.waitFor(t, EventTranscription)

	time.Sleep(50 * time.Millisecond)
	if n := len(em2.all()); n != 0 {
		t.Errorf("other connection received %d events", n)
	}
	m.Shutdown()
}

func TestSpeechModel_AskWithSpeech(t *testing.T) {
	chat := &fakeChat{chunks: []string{"First sentence. ", "Second one", " here."}}
	m, synth := newTestSpeechModel(t, &fakeSpeech{}, chat)
	em := newRecordingEmitter()
	m.Register("c1", em)

	m.Ask("c1", &AskReq{Text: "tell me", Speak: true})

	var texts, audio []string
	var endText string
	for _, ev := range em.all() {
		switch ev.event {
		case EventBotText:
			texts = append(texts, textOf(ev))
		case EventBotTextEnd:
			endText = textOf(ev)
		case EventBotAudio:
			raw, _ := base64.StdEncoding.DecodeString(ev.data.(map[string]string)["audio"])
			audio = append(audio, string(raw))
		}
	}

	if strings.Join(texts, "") != "First sentence. Second one here." {
		t.Errorf("unexpected streamed text %v", texts)
	}
	if endText != "First sentence. Second one here." {
		t.Errorf("unexpected final text %q", endText)
	}
	if len(synth.texts) != 2 || synth.texts[0] != "First sentence." || synth.texts[1] != "Second one here." {
		t.Errorf("unexpected synthesized sentences %v", synth.texts)
	}
	if len(audio) != 2 || audio[0] != "pcm:First sentence." {
		t.Errorf("audio must follow sentence order, got %v", audio)
	}

	all := em.all()
	if all[len(all)-1].event != EventBotAudioEnd {
		t.Errorf("expected bot_audio_end last, got %s", all[len(all)-1].event)
	}
}

func TestSpeechModel_SubmitQuery(t *testing.T) {
	chat := &fakeChat{chunks: []string{"answer"}}
	speech := &fakeSpeech{}
	m, _ := newTestSpeechModel(t, speech, chat)
	em := newRecordingEmitter()
	m.Register("c1", em)

	m.SubmitQuery("c1", &SubmitQueryReq{})
	if len(chat.requests) != 0 {
		t.Fatal("an empty query must not reach the chat provider")
	}

	c := m.get("c1")
	c.query = []string{"what is", "a black hole"}
	m.SubmitQuery("c1", &SubmitQueryReq{})

	req := chat.lastRequest()
	if req[len(req)-1].Content != "what is a black hole" {
		t.Errorf("unexpected question %q", req[len(req)-1].Content)
	}
	if c.takeQuery() != "" {
		t.Error("query must be reset after submit")
	}
	em.waitFor(t, EventBotTextEnd)
}

func TestSpeechModel_SessionStoppedIsDeliveredOnClose(t *testing.T) {
	m, _ := newTestSpeechModel(t, &fakeSpeech{}, &fakeChat{})

	for i := 0; i < 50; i++ {
		em := newRecordingEmitter()
		m.Register("c1", em)
		c := m.get("c1")

		// closing stops the recognizer first, which queues its last event
		stream := newFakeStream()
		stream.events <- &insights.TranscriptionEvent{Type: insights.EventSessionStopped}
		_ = stream.Close()

		m.watchStream("c1", c, stream)

		found := false
		for _, ev := range em.all() {
			if d, ok := ev.data.(map[string]string); ok && ev.event == EventDebug && d["message"] == "Speech session stopped" {
				found = true
			}
		}
		if !found {
			t.Fatalf("run %d: session stopped event was dropped, got %+v", i, em.all())
		}
		m.Unregister("c1")
	}
}

func TestSpeechModel_AudioWriteFailure(t *testing.T) {
	speech := &fakeSpeech{}
	m, _ := newTestSpeechModel(t, speech, &fakeChat{})
	em := newRecordingEmitter()
	m.Register("c1", em)

	m.StartTranscription("c1")
	em.waitForText(t, EventTranscription, "Transcription started. Speak now...")

	// the push stream rejects writes while still registered on the connection
	_ = speech.streams[0].Close()

	audio := base64.StdEncoding.EncodeToString([]byte{1, 2})
	m.HandleAudio("c1", &AudioDataReq{Audio: &audio})

	ev := em.waitForText(t, EventTranscription, "Audio stream error: stream closed")
	data, ok := ev.data.(map[string]interface{})
	if !ok || data["error"] != true {
		t.Errorf("expected an error transcription, got %+v", ev.data)
	}
}
