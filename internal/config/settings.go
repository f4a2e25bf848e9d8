package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when neither the config file nor the environment set a value.
const (
	DefaultAddr                 = ":8000"
	DefaultCORSOrigin           = "*"
	DefaultTokenTTLMinutes      = 10080
	DefaultSessionDuration      = 180
	DefaultStaleAfterMinutes    = 30
	DefaultSweepIntervalMinutes = 5
	DefaultDeepgramURL          = "wss://api.deepgram.com/v1/listen"
	DefaultSpeechLanguage       = "nl"
	DefaultSpeechModel          = "nova-2"

	// InsecureSecretKey signs tokens when no secret is configured.
	InsecureSecretKey = "dev-only-insecure-key-change-in-production"
)

// Environment variable names read by Resolve.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvSecretKey      = "SECRET_KEY"
	EnvTokenTTL       = "ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvDeepgramAPIKey = "DEEPGRAM_API_KEY"
	EnvAddr           = "DMT_ADDR"
)

// Settings holds resolved server settings.
type Settings struct {
	Addr            string
	CORSOrigin      string
	DatabaseURL     string
	SecretKey       string
	TokenTTL        time.Duration
	DefaultDuration int
	StaleAfter      time.Duration
	SweepInterval   time.Duration
	DeepgramURL     string
	DeepgramAPIKey  string
	SpeechLanguage  string
	SpeechModel     string
}

// LoadDotEnv loads variables from a .env file in the working directory.
// Variables already present in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Resolve merges defaults, the config file and environment variables, in
// that order of increasing precedence.
func Resolve(file FileConfig, getenv func(string) string) (Settings, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	s := Settings{
		Addr:            DefaultAddr,
		CORSOrigin:      DefaultCORSOrigin,
		DatabaseURL:     DefaultDBPath(),
		TokenTTL:        DefaultTokenTTLMinutes * time.Minute,
		DefaultDuration: DefaultSessionDuration,
		StaleAfter:      DefaultStaleAfterMinutes * time.Minute,
		SweepInterval:   DefaultSweepIntervalMinutes * time.Minute,
		DeepgramURL:     DefaultDeepgramURL,
		SpeechLanguage:  DefaultSpeechLanguage,
		SpeechModel:     DefaultSpeechModel,
	}

	setString(&s.Addr, file.Server.Addr)
	setString(&s.CORSOrigin, file.Server.CORSOrigin)
	setString(&s.DatabaseURL, file.Database.URL)
	setString(&s.SecretKey, file.Auth.SecretKey)
	setMinutes(&s.TokenTTL, file.Auth.TokenTTLMinutes)
	if file.Session.DefaultDuration != nil {
		s.DefaultDuration = *file.Session.DefaultDuration
	}
	setMinutes(&s.StaleAfter, file.Session.StaleAfterMinutes)
	setMinutes(&s.SweepInterval, file.Session.SweepIntervalMinutes)
	setString(&s.DeepgramURL, file.Speech.DeepgramURL)
	setString(&s.SpeechLanguage, file.Speech.Language)
	setString(&s.SpeechModel, file.Speech.Model)

	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		s.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvDatabaseURL)); v != "" {
		s.DatabaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvSecretKey)); v != "" {
		s.SecretKey = v
	}
	if v := strings.TrimSpace(getenv(EnvTokenTTL)); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", EnvTokenTTL, err)
		}
		s.TokenTTL = time.Duration(minutes) * time.Minute
	}
	s.DeepgramAPIKey = strings.TrimSpace(getenv(EnvDeepgramAPIKey))

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks resolved settings for values the server cannot run with.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Addr) == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if strings.TrimSpace(s.DatabaseURL) == "" {
		return fmt.Errorf("database url must not be empty")
	}
	if s.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be > 0")
	}
	if s.DefaultDuration <= 0 {
		return fmt.Errorf("default session duration must be > 0")
	}
	if s.StaleAfter < 0 {
		return fmt.Errorf("stale-after must be >= 0")
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be > 0")
	}
	return nil
}

// InsecureSecret reports whether tokens would be signed with the built-in key.
func (s Settings) InsecureSecret() bool {
	return s.SecretKey == "" || s.SecretKey == InsecureSecretKey
}

// SigningKey returns the configured secret or the insecure development key.
func (s Settings) SigningKey() []byte {
	if s.SecretKey == "" {
		return []byte(InsecureSecretKey)
	}
	return []byte(s.SecretKey)
}

func setString(target, value *string) {
	if value == nil {
		return
	}
	*target = *value
}

func setMinutes(target *time.Duration, value *int) {
	if value == nil {
		return
	}
	*target = time.Duration(*value) * time.Minute
}
