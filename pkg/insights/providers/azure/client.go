package azure

import (
	"context"
	"errors"
	"io"

	"github.com/bookmate-ai/bookmate-server/pkg/config"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/sirupsen/logrus"
)

var ErrMissingCredentials = errors.New(config.MissingSpeechCreds)

// AzureProvider implements insights.SpeechProvider and insights.Synthesizer
// on top of the Azure Speech SDK.
type AzureProvider struct {
	conf config.AzureSpeech
	log  *logrus.Entry
}

var (
	_ insights.SpeechProvider = (*AzureProvider)(nil)
	_ insights.Synthesizer    = (*AzureProvider)(nil)
)

// NewProvider doesn't validate the credentials, so the server can start
// without them. Every session checks them before calling Azure.
func NewProvider(conf config.AzureSpeech, log *logrus.Logger) *AzureProvider {
	return &AzureProvider{
		conf: conf,
		log:  log.WithField("provider", "azure"),
	}
}

func (p *AzureProvider) HasCredentials() bool {
	return p.conf.SubscriptionKey != "" && p.conf.ServiceRegion != ""
}

// CreateTranscription delegates the transcription task to the specialized transcribe client.
func (p *AzureProvider) CreateTranscription(ctx context.Context, connId, spokenLang string) (insights.TranscriptionStream, error) {
	if !p.HasCredentials() {
		return nil, ErrMissingCredentials
	}
	if spokenLang == "" {
		spokenLang = p.conf.Language
	}

	transcribeClient := newTranscribeClient(&p.conf, p.log)
	return transcribeClient.CreateTranscription(ctx, connId, spokenLang)
}

// SynthesizeText delegates to the tts client using the configured voice.
func (p *AzureProvider) SynthesizeText(ctx context.Context, text string) (io.ReadCloser, error) {
	if !p.HasCredentials() {
		return nil, ErrMissingCredentials
	}

	tts := newTTSClient(&p.conf, p.log)
	return tts.SynthesizeText(ctx, text, p.conf.Voice)
}
