package config

import (
	"github.com/kelseyhightower/envconfig"
)

// envSecrets are values usually kept out of config.yaml.
type envSecrets struct {
	AzureSpeechKey     string `envconfig:"AZURE_SPEECH_KEY"`
	AzureServiceRegion string `envconfig:"AZURE_SERVICE_REGION"`
	OpenAIApiKey       string `envconfig:"OPENAI_API_KEY"`
	GoogleApiKey       string `envconfig:"GOOGLE_API_KEY"`
	GcsCredentialsFile string `envconfig:"GCS_CREDENTIALS_FILE"`
}

// ApplyEnvOverrides overlays non-empty environment values on top of the yaml values.
func ApplyEnvOverrides(appCnf *AppConfig) error {
	var s envSecrets
	if err := envconfig.Process("", &s); err != nil {
		return err
	}

	if s.AzureSpeechKey != "" {
		appCnf.AzureSpeech.SubscriptionKey = s.AzureSpeechKey
	}
	if s.AzureServiceRegion != "" {
		appCnf.AzureSpeech.ServiceRegion = s.AzureServiceRegion
	}
	if s.GcsCredentialsFile != "" {
		appCnf.StorageInfo.Gcs.CredentialsFile = s.GcsCredentialsFile
	}

	switch appCnf.ChatSettings.Provider {
	case ChatProviderGoogle:
		if s.GoogleApiKey != "" {
			appCnf.ChatSettings.ApiKey = s.GoogleApiKey
		}
	default:
		if s.OpenAIApiKey != "" {
			appCnf.ChatSettings.ApiKey = s.OpenAIApiKey
		}
	}
	return nil
}
