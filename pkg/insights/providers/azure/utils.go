package azure

import (
	"io"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
)

// Write implements the io.Writer interface by calling the underlying push stream's Write method.
func (s *azureTranscribeStream) Write(p []byte) (n int, err error) {
	select {
	case <-s.done:
		return 0, io.ErrClosedPipe
	default:
	}

	if err = s.pushStream.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close stops the recognizer and closes the push stream. It is safe to call more than once.
func (s *azureTranscribeStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		// stop first, so the SessionStopped event can still be delivered
		select {
		case err = <-s.recognizer.StopContinuousRecognitionAsync():
		case <-time.After(config.RecognizerGrace):
			s.log.Warnln("timed out waiting for the recognizer to stop")
		}
		close(s.done)

		s.pushStream.CloseStream()
		s.recognizer.Close()
		s.audioConfig.Close()
		s.pushStream.Close()
		s.speechConfig.Close()
	})
	return err
}

func (s *azureTranscribeStream) Events() <-chan *insights.TranscriptionEvent {
	return s.events
}

func (s *azureTranscribeStream) Done() <-chan struct{} {
	return s.done
}

// azureTTSStream exposes the synthesized audio as an io.ReadCloser and
// owns every SDK handle needed to keep it alive.
type azureTTSStream struct {
	stream      *speech.AudioDataStream
	outcome     *speech.SpeechSynthesisOutcome
	synthesizer *speech.SpeechSynthesizer
	conf        *speech.SpeechConfig
}

func (s *azureTTSStream) Read(p []byte) (int, error) {
	n, err := s.stream.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *azureTTSStream) Close() error {
	s.stream.Close()
	s.outcome.Close()
	s.synthesizer.Close()
	s.conf.Close()
	return nil
}
