package config

import "time"

const (
	DriverMongoDB = "mongodb"
	DriverMySQL   = "mysql"
	DriverMemory  = "memory"

	StorageGCS   = "gcs"
	StorageLocal = "local"

	ChatProviderOpenAI = "openai"
	ChatProviderGoogle = "google"

	SenderUser      = "user"
	SenderAssistant = "assistant"

	DefaultPort             = 5000
	DefaultMaxUploadSize    = 100 // MB
	DefaultLinkValidity     = time.Hour
	DefaultSpeechLanguage   = "en-US"
	DefaultSpeechVoice      = "en-US-BrianMultilingualNeural"
	DefaultSampleRate       = 16000
	DefaultChatModel        = "gpt-4o-mini"
	DefaultHistoryLimit     = 7
	DefaultMinSentenceChars = 20
	DefaultCatalogBaseUrl   = "https://libgen.is"
	DefaultMirrorLinkText   = "Libgen & IPFS & Tor"
	DefaultCatalogCacheTTL  = 10 * time.Minute
	DefaultCatalogTimeout   = 30 * time.Second

	UploadLockTTL   = 2 * time.Minute
	RecognizerGrace = 5 * time.Second

	TitlePrompt = "Make a title for the following question of the user. Keep it of 2 words if possible otherwise not more than 5 words please. \n%s"
)
