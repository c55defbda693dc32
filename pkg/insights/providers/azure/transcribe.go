package azure

// This file contains the logic for interacting with the Azure Speech SDK
// recognizer: creating it on top of a push stream and forwarding its
// events to the owner of the stream.

import (
	"context"
	"fmt"
	"sync"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/sirupsen/logrus"
)

type transcribeClient struct {
	conf *config.AzureSpeech
	log  *logrus.Entry
}

func newTranscribeClient(conf *config.AzureSpeech, log *logrus.Entry) *transcribeClient {
	return &transcribeClient{
		conf: conf,
		log:  log,
	}
}

func (c *transcribeClient) CreateTranscription(ctx context.Context, connId, spokenLang string) (insights.TranscriptionStream, error) {
	log := c.log.WithFields(logrus.Fields{
		"method": "CreateTranscription",
		"connId": connId,
		"lang":   spokenLang,
	})
	log.Infoln("starting transcription")

	speechConfig, err := speech.NewSpeechConfigFromSubscription(c.conf.SubscriptionKey, c.conf.ServiceRegion)
	if err != nil {
		return nil, err
	}
	if err = speechConfig.SetSpeechRecognitionLanguage(spokenLang); err != nil {
		speechConfig.Close()
		return nil, err
	}

	audioFormat, err := audio.GetWaveFormatPCM(uint32(c.conf.SampleRate), 16, 1)
	if err != nil {
		speechConfig.Close()
		return nil, fmt.Errorf("could not create audio format: %w", err)
	}
	defer audioFormat.Close()

	inputStream, err := audio.CreatePushAudioInputStreamFromFormat(audioFormat)
	if err != nil {
		speechConfig.Close()
		return nil, fmt.Errorf("could not create push stream: %w", err)
	}

	audioConfig, err := audio.NewAudioConfigFromStreamInput(inputStream)
	if err != nil {
		inputStream.Close()
		speechConfig.Close()
		return nil, err
	}

	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, audioConfig)
	if err != nil {
		audioConfig.Close()
		inputStream.Close()
		speechConfig.Close()
		return nil, err
	}

	stream := &azureTranscribeStream{
		pushStream:   inputStream,
		audioConfig:  audioConfig,
		speechConfig: speechConfig,
		recognizer:   recognizer,
		events:       make(chan *insights.TranscriptionEvent, 64),
		done:         make(chan struct{}),
		log:          log,
	}

	recognizer.SessionStarted(func(e speech.SessionEventArgs) {
		defer e.Close()
		log.Infoln("azure transcription session started")
		stream.emit(&insights.TranscriptionEvent{Type: insights.EventSessionStarted})
	})
	recognizer.SessionStopped(func(e speech.SessionEventArgs) {
		defer e.Close()
		log.Infoln("azure transcription session stopped")
		stream.emit(&insights.TranscriptionEvent{Type: insights.EventSessionStopped})
	})
	recognizer.SpeechStartDetected(func(e speech.RecognitionEventArgs) {
		defer e.Close()
		stream.emit(&insights.TranscriptionEvent{Type: insights.EventSpeechStarted})
	})

	recognizer.Recognizing(func(e speech.SpeechRecognitionEventArgs) {
		defer e.Close()
		stream.emit(&insights.TranscriptionEvent{
			Type: insights.EventRecognizing,
			Text: e.Result.Text,
		})
	})

	recognizer.Recognized(func(e speech.SpeechRecognitionEventArgs) {
		defer e.Close()
		switch e.Result.Reason {
		case common.RecognizedSpeech:
			stream.emit(&insights.TranscriptionEvent{
				Type: insights.EventRecognized,
				Text: e.Result.Text,
			})
		case common.NoMatch:
			stream.emit(&insights.TranscriptionEvent{Type: insights.EventNoMatch})
		}
	})

	recognizer.Canceled(func(e speech.SpeechRecognitionCanceledEventArgs) {
		defer e.Close()
		log.Infof("azure transcription canceled: %v", e.ErrorDetails)
		ev := &insights.TranscriptionEvent{
			Type:   insights.EventCanceled,
			Reason: cancellationReason(e.Reason),
		}
		if e.Reason == common.Error {
			ev.ErrorDetails = e.ErrorDetails
		}
		stream.emit(ev)
	})

	go func() {
		// StartContinuousRecognitionAsync returns a channel that provides the result of the async operation.
		if err := <-recognizer.StartContinuousRecognitionAsync(); err != nil {
			log.WithError(err).Errorln("error starting azure recognition")
			stream.emit(&insights.TranscriptionEvent{
				Type:         insights.EventCanceled,
				Reason:       "Error",
				ErrorDetails: err.Error(),
			})
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = stream.Close()
		case <-stream.done:
		}
	}()

	return stream, nil
}

// azureTranscribeStream adapts the Azure push stream and recognizer to
// insights.TranscriptionStream.
type azureTranscribeStream struct {
	pushStream   *audio.PushAudioInputStream
	audioConfig  *audio.AudioConfig
	speechConfig *speech.SpeechConfig
	recognizer   *speech.SpeechRecognizer
	events       chan *insights.TranscriptionEvent
	done         chan struct{}
	closeOnce    sync.Once
	log          *logrus.Entry
}

// emit never blocks past Close, so SDK callbacks can't hang on a gone reader.
func (s *azureTranscribeStream) emit(ev *insights.TranscriptionEvent) {
	select {
	case <-s.done:
	case s.events <- ev:
	}
}

func cancellationReason(r common.CancellationReason) string {
	switch r {
	case common.Error:
		return "Error"
	case common.EndOfStream:
		return "EndOfStream"
	case common.CancelledByUser:
		return "CancelledByUser"
	}
	return fmt.Sprintf("%d", r)
}
