package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bookmate-ai/bookmate-server/pkg/factory"
	"github.com/bookmate-ai/bookmate-server/pkg/insights"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/providers/azure"
	"github.com/bookmate-ai/bookmate-server/pkg/insights/media"
	"github.com/urfave/cli/v3"
)

func speakCommand() *cli.Command {
	return &cli.Command{
		Name:  "speak",
		Usage: "Ask the chat model a question and save the spoken answer as a WAV file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "prompt",
				Usage:    "Question for the chat model",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output WAV file",
				Value: "output.wav",
			},
			&cli.StringFlag{
				Name:  "voice",
				Usage: "Azure voice name, defaults to azure_speech.voice",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Chat model, defaults to chat.model",
			},
		},
		Action: runSpeak,
	}
}

func runSpeak(ctx context.Context, c *cli.Command) error {
	appCnf, err := loadConfig(c)
	if err != nil {
		return err
	}
	if v := c.String("voice"); v != "" {
		appCnf.AzureSpeech.Voice = v
	}
	if m := c.String("model"); m != "" {
		appCnf.ChatSettings.Model = m
	}

	provider, err := factory.NewChatProvider(ctx, appCnf)
	if err != nil {
		return err
	}
	synth := factory.NewSpeechProvider(appCnf)
	if !synth.HasCredentials() {
		return errors.New("azure speech credentials are missing")
	}

	chunks, err := provider.CompleteStream(ctx, appCnf.ChatSettings.Model, []insights.ChatMessage{
		{Role: insights.RoleUser, Content: c.String("prompt")},
	})
	if err != nil {
		return err
	}

	wav, err := createAnswerWav(c.String("out"))
	if err != nil {
		return err
	}
	defer wav.Close()

	splitter := insights.NewSentenceSplitter(appCnf.ChatSettings.MinSentenceChars)
	speak := func(sentence string) error {
		audio, err := synth.SynthesizeText(ctx, sentence)
		if err != nil {
			return fmt.Errorf("failed to synthesize %q: %w", sentence, err)
		}
		defer audio.Close()
		_, err = io.Copy(wav, audio)
		return err
	}

	for chunk := range chunks {
		if chunk.Err != nil {
			return chunk.Err
		}
		fmt.Print(chunk.Text)
		for _, sentence := range splitter.Push(chunk.Text) {
			if err = speak(sentence); err != nil {
				return err
			}
		}
	}
	fmt.Println()

	if rest := splitter.Flush(); rest != "" {
		if err = speak(rest); err != nil {
			return err
		}
	}

	appCnf.Logger.WithField("file", c.String("out")).Infoln("saved spoken answer")
	return nil
}

// createAnswerWav creates the output file at the synthesizer's rate, which
// is independent of the recognizer's azure_speech.sample_rate.
func createAnswerWav(path string) (*media.WAVWriter, error) {
	return media.CreateWAVFile(path, azure.SynthesisSampleRate, 1)
}
