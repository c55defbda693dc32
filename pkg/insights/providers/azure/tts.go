package azure

import (
	"context"
	"fmt"
	"io"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/sirupsen/logrus"
)

// SynthesisSampleRate is the rate of the raw PCM returned by SynthesizeText.
const SynthesisSampleRate = 16000

// ttsClient holds the configuration needed for Azure text-to-speech.
type ttsClient struct {
	conf *config.AzureSpeech
	log  *logrus.Entry
}

func newTTSClient(conf *config.AzureSpeech, log *logrus.Entry) *ttsClient {
	return &ttsClient{
		conf: conf,
		log:  log.WithField("service", "azure-tts"),
	}
}

// SynthesizeText performs the synthesis and returns a streaming reader for raw 16 kHz mono PCM.
func (c *ttsClient) SynthesizeText(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	conf, err := speech.NewSpeechConfigFromSubscription(c.conf.SubscriptionKey, c.conf.ServiceRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure speech config: %w", err)
	}

	if voice != "" {
		if err = conf.SetSpeechSynthesisVoiceName(voice); err != nil {
			conf.Close()
			return nil, fmt.Errorf("failed to set synthesis voice: %w", err)
		}
	}
	// must match SynthesisSampleRate
	if err = conf.SetSpeechSynthesisOutputFormat(common.Raw16Khz16BitMonoPcm); err != nil {
		conf.Close()
		return nil, fmt.Errorf("failed to set synthesis output format: %w", err)
	}

	// Audio config is nil as we get a stream from the result.
	synthesizer, err := speech.NewSpeechSynthesizerFromConfig(conf, nil)
	if err != nil {
		conf.Close()
		return nil, fmt.Errorf("failed to create speech synthesizer: %w", err)
	}

	task := synthesizer.StartSpeakingTextAsync(text)
	var outcome speech.SpeechSynthesisOutcome

	select {
	case outcome = <-task:
	case <-ctx.Done():
		synthesizer.Close()
		conf.Close()
		return nil, fmt.Errorf("context cancelled while waiting for synthesis result: %w", ctx.Err())
	}

	cleanup := func() {
		outcome.Close()
		synthesizer.Close()
		conf.Close()
	}

	if outcome.Error != nil {
		cleanup()
		return nil, fmt.Errorf("synthesis outcome error: %w", outcome.Error)
	}

	if outcome.Result.Reason != common.SynthesizingAudioStarted {
		cancellation, _ := speech.NewCancellationDetailsFromSpeechSynthesisResult(outcome.Result)
		details := ""
		if cancellation != nil {
			details = cancellation.ErrorDetails
		}
		err = fmt.Errorf("synthesis failed: reason=%s, details=%s", outcome.Result.Reason.String(), details)
		cleanup()
		return nil, err
	}

	stream, err := speech.NewAudioDataStreamFromSpeechSynthesisResult(outcome.Result)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to create audio data stream: %w", err)
	}

	c.log.WithField("chars", len(text)).Debugln("synthesis started")
	return &azureTTSStream{
		stream:      stream,
		outcome:     &outcome,
		synthesizer: synthesizer,
		conf:        conf,
	}, nil
}
