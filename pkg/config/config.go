package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	appConfig     *AppConfig
	dbTablePrefix string
)

type AppConfig struct {
	RDS      *redis.Client
	DB       *gorm.DB
	MongoDB  *mongo.Database
	NatsConn *nats.Conn
	Logger   *logrus.Logger

	RootWorkingDir     string
	Client             ClientInfo         `yaml:"client"`
	LogSettings        LogSettings        `yaml:"log_settings"`
	DatabaseInfo       DatabaseInfo       `yaml:"database_info"`
	RedisInfo          RedisInfo          `yaml:"redis_info"`
	NatsInfo           NatsInfo           `yaml:"nats_info"`
	StorageInfo        StorageInfo        `yaml:"storage"`
	UploadFileSettings UploadFileSettings `yaml:"upload_file_settings"`
	AzureSpeech        AzureSpeech        `yaml:"azure_speech"`
	ChatSettings       ChatSettings       `yaml:"chat"`
	CatalogSettings    CatalogSettings    `yaml:"catalog"`
}

type ClientInfo struct {
	Port           int            `yaml:"port"`
	Debug          bool           `yaml:"debug"`
	Path           string         `yaml:"path"`
	ApiKey         string         `yaml:"api_key"`
	Secret         string         `yaml:"secret"`
	ProxyHeader    string         `yaml:"proxy_header"`
	PrometheusConf PrometheusConf `yaml:"prometheus"`
}

type PrometheusConf struct {
	Enable      bool   `yaml:"enable"`
	MetricsPath string `yaml:"metrics_path"`
}

type LogSettings struct {
	LogFile    string  `yaml:"log_file"`
	MaxSize    int     `yaml:"max_size"`
	MaxBackups int     `yaml:"max_backups"`
	MaxAge     int     `yaml:"max_age"`
	LogLevel   *string `yaml:"log_level"`
}

type DatabaseInfo struct {
	DriverName      string          `yaml:"driver_name"`
	MongoUri        string          `yaml:"mongo_uri"`
	Host            string          `yaml:"host"`
	Port            int32           `yaml:"port"`
	Username        string          `yaml:"username"`
	Password        string          `yaml:"password"`
	DBName          string          `yaml:"db"`
	Prefix          string          `yaml:"prefix"`
	Charset         *string         `yaml:"charset"`
	Loc             *string         `yaml:"loc"`
	ConnMaxLifetime *time.Duration  `yaml:"conn_max_lifetime"`
	MaxOpenConns    *int            `yaml:"max_open_conns"`
	Replicas        []ReplicaDBInfo `yaml:"replicas"`
}

// ReplicaDBInfo holds connection details for a read replica database.
type ReplicaDBInfo struct {
	Host     string `yaml:"host"`
	Port     int32  `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisInfo struct {
	Host              string   `yaml:"host"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DBName            int      `yaml:"db"`
	UseTLS            bool     `yaml:"use_tls"`
	MasterName        string   `yaml:"sentinel_master_name"`
	SentinelUsername  string   `yaml:"sentinel_username"`
	SentinelPassword  string   `yaml:"sentinel_password"`
	SentinelAddresses []string `yaml:"sentinel_addresses"`
}

type NatsInfo struct {
	NatsUrls []string     `yaml:"nats_urls"`
	User     string       `yaml:"user"`
	Password string       `yaml:"password"`
	Nkey     *string      `yaml:"nkey"`
	Subjects NatsSubjects `yaml:"subjects"`
}

type NatsSubjects struct {
	Transcription string `yaml:"transcription"`
	Chat          string `yaml:"chat"`
	Library       string `yaml:"library"`
}

type StorageInfo struct {
	Driver       string        `yaml:"driver"`
	LinkValidity time.Duration `yaml:"link_validity"`
	Gcs          GcsStorage    `yaml:"gcs"`
	Local        LocalStorage  `yaml:"local"`
}

type GcsStorage struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
	PatchCors       bool   `yaml:"patch_cors"`
}

type LocalStorage struct {
	Path      string `yaml:"path"`
	PublicUrl string `yaml:"public_url"`
}

type UploadFileSettings struct {
	// MaxSize in MB
	MaxSize      uint64   `yaml:"max_size"`
	AllowedTypes []string `yaml:"allowed_types"`
}

type AzureSpeech struct {
	SubscriptionKey string `yaml:"subscription_key"`
	ServiceRegion   string `yaml:"service_region"`
	Language        string `yaml:"language"`
	Voice           string `yaml:"voice"`
	SampleRate      int    `yaml:"sample_rate"`
}

type ChatSettings struct {
	Provider         string `yaml:"provider"`
	ApiKey           string `yaml:"api_key"`
	BaseUrl          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	TitleModel       string `yaml:"title_model"`
	HistoryLimit     int    `yaml:"history_limit"`
	MinSentenceChars int    `yaml:"min_sentence_chars"`
}

type CatalogSettings struct {
	BaseUrl        string        `yaml:"base_url"`
	MirrorLinkText string        `yaml:"mirror_link_text"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	Timeout        time.Duration `yaml:"timeout"`
	DownloadDir    string        `yaml:"download_dir"`
}

// New applies the defaults and stores the config for global usage.
func New(appCnf *AppConfig) (*AppConfig, error) {
	if appCnf.Client.Port == 0 {
		appCnf.Client.Port = DefaultPort
	}
	if appCnf.Client.Path == "" {
		appCnf.Client.Path = "./views"
	}
	if strings.HasPrefix(appCnf.Client.Path, "./") {
		appCnf.Client.Path = filepath.Join(appCnf.RootWorkingDir, appCnf.Client.Path)
	}
	if appCnf.Client.PrometheusConf.MetricsPath == "" {
		appCnf.Client.PrometheusConf.MetricsPath = "/metrics"
	}

	if appCnf.DatabaseInfo.DriverName == "" {
		appCnf.DatabaseInfo.DriverName = DriverMongoDB
	}
	switch appCnf.DatabaseInfo.DriverName {
	case DriverMongoDB, DriverMySQL, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", appCnf.DatabaseInfo.DriverName)
	}
	if appCnf.DatabaseInfo.DBName == "" {
		appCnf.DatabaseInfo.DBName = "db"
	}
	if appCnf.DatabaseInfo.DriverName == DriverMongoDB && appCnf.DatabaseInfo.MongoUri == "" {
		appCnf.DatabaseInfo.MongoUri = "mongodb://localhost:27017"
	}
	if appCnf.DatabaseInfo.Prefix != "" {
		dbTablePrefix = appCnf.DatabaseInfo.Prefix
	}

	subjects := &appCnf.NatsInfo.Subjects
	if subjects.Transcription == "" {
		subjects.Transcription = "bookmate.transcription"
	}
	if subjects.Chat == "" {
		subjects.Chat = "bookmate.chat"
	}
	if subjects.Library == "" {
		subjects.Library = "bookmate.library"
	}

	if err := setStorageDefaults(appCnf); err != nil {
		return nil, err
	}

	if appCnf.UploadFileSettings.MaxSize == 0 {
		appCnf.UploadFileSettings.MaxSize = DefaultMaxUploadSize
	}
	if len(appCnf.UploadFileSettings.AllowedTypes) == 0 {
		appCnf.UploadFileSettings.AllowedTypes = []string{"pdf", "epub"}
	}

	speechCnf := &appCnf.AzureSpeech
	if speechCnf.Language == "" {
		speechCnf.Language = DefaultSpeechLanguage
	}
	if speechCnf.Voice == "" {
		speechCnf.Voice = DefaultSpeechVoice
	}
	if speechCnf.SampleRate == 0 {
		speechCnf.SampleRate = DefaultSampleRate
	}

	chatCnf := &appCnf.ChatSettings
	if chatCnf.Provider == "" {
		chatCnf.Provider = ChatProviderOpenAI
	}
	if chatCnf.Model == "" {
		chatCnf.Model = DefaultChatModel
	}
	if chatCnf.TitleModel == "" {
		chatCnf.TitleModel = chatCnf.Model
	}
	if chatCnf.HistoryLimit <= 0 {
		chatCnf.HistoryLimit = DefaultHistoryLimit
	}
	if chatCnf.MinSentenceChars <= 0 {
		chatCnf.MinSentenceChars = DefaultMinSentenceChars
	}

	catalogCnf := &appCnf.CatalogSettings
	if catalogCnf.BaseUrl == "" {
		catalogCnf.BaseUrl = DefaultCatalogBaseUrl
	}
	catalogCnf.BaseUrl = strings.TrimSuffix(catalogCnf.BaseUrl, "/")
	if catalogCnf.MirrorLinkText == "" {
		catalogCnf.MirrorLinkText = DefaultMirrorLinkText
	}
	if catalogCnf.CacheTTL == 0 {
		catalogCnf.CacheTTL = DefaultCatalogCacheTTL
	}
	if catalogCnf.Timeout == 0 {
		catalogCnf.Timeout = DefaultCatalogTimeout
	}
	if catalogCnf.DownloadDir == "" {
		catalogCnf.DownloadDir = os.TempDir()
	}

	appConfig = appCnf
	return appCnf, nil
}

func setStorageDefaults(appCnf *AppConfig) error {
	s := &appCnf.StorageInfo
	if s.Driver == "" {
		s.Driver = StorageLocal
	}
	if s.LinkValidity <= 0 {
		s.LinkValidity = DefaultLinkValidity
	}

	switch s.Driver {
	case StorageGCS:
		if s.Gcs.Bucket == "" {
			return fmt.Errorf("storage.gcs.bucket is required for the gcs driver")
		}
	case StorageLocal:
		if appCnf.Client.Secret == "" {
			return fmt.Errorf("client.secret is required to sign download links")
		}
		if s.Local.Path == "" {
			s.Local.Path = "./books"
		}
		if strings.HasPrefix(s.Local.Path, "./") {
			s.Local.Path = filepath.Join(appCnf.RootWorkingDir, s.Local.Path)
		}
		if s.Local.PublicUrl == "" {
			s.Local.PublicUrl = fmt.Sprintf("http://localhost:%d", appCnf.Client.Port)
		}
		s.Local.PublicUrl = strings.TrimSuffix(s.Local.PublicUrl, "/")

		if err := os.MkdirAll(s.Local.Path, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory %s: %w", s.Local.Path, err)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
	return nil
}

func GetConfig() *AppConfig {
	return appConfig
}

func FormatDBTable(table string) string {
	if dbTablePrefix != "" {
		return dbTablePrefix + table
	}
	return table
}
