package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	ProviderGemini     = "gemini"
	ProviderGpt        = "gpt"
	ProviderOpenRouter = "openrouter"

	PromptModeTemplate    = "template"
	PromptModePassthrough = "passthrough"
)

var defaultModels = map[string]string{
	ProviderGemini:     "gemini-2.5-pro",
	ProviderGpt:        "gpt-4o-mini",
	ProviderOpenRouter: "google/gemini-2.5-pro",
}

type Config struct {
	Env              string
	Provider         string `validate:"oneof=gemini gpt openrouter"`
	Server           Server
	LogConfig        LogConfig
	HTTP             HTTP
	Relay            RelayConfig
	GeminiConfig     AiConfig
	OpenAiConfig     AiConfig
	OpenRouterConfig AiConfig
	KafkaConfig      KafkaConfig
	OtelConfig       OtelConfig
}

type Server struct {
	Name string `validate:"required"`
	Port string `validate:"required,numeric"`
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

type HTTP struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RelayConfig is fixed for the whole deployment; nothing in it varies per request.
type RelayConfig struct {
	Model        string
	PromptMode   string `validate:"oneof=template passthrough"`
	StrictJSON   bool
	TemplateFile string `validate:"omitempty,file"`
}

type AiConfig struct {
	ApiKey string
}

type OtelConfig struct {
	Endpoint string
}

type Topic struct {
	CompletionTopic string
}

type KafkaConfig struct {
	Enable   bool
	Brokers  []string `validate:"required_if=Enable true"`
	Version  string
	SASL     bool
	TLS      bool
	CertPath string
	Username string `validate:"required_if=SASL true"`
	Password string
	Strategy string `validate:"omitempty,oneof=sha256 sha512"`
	Topic    Topic
}

func InitConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("Env", "local")
	v.SetDefault("Provider", ProviderGemini)
	v.SetDefault("Server.Name", "ask-relay")
	v.SetDefault("Server.Port", "5000")
	v.SetDefault("LogConfig.Level", "info")
	v.SetDefault("HTTP.ReadTimeout", 5*time.Second)
	v.SetDefault("HTTP.WriteTimeout", 5*time.Second)
	v.SetDefault("HTTP.IdleTimeout", 30*time.Second)
	v.SetDefault("Relay.Model", "")
	v.SetDefault("Relay.PromptMode", PromptModeTemplate)
	v.SetDefault("Relay.StrictJSON", false)
	v.SetDefault("Relay.TemplateFile", "")
	v.SetDefault("GeminiConfig.ApiKey", "")
	v.SetDefault("OpenAiConfig.ApiKey", "")
	v.SetDefault("OpenRouterConfig.ApiKey", "")
	v.SetDefault("OtelConfig.Endpoint", "")
	v.SetDefault("KafkaConfig.Enable", false)
	v.SetDefault("KafkaConfig.Brokers", []string{})
	v.SetDefault("KafkaConfig.Version", "2.8.0")
	v.SetDefault("KafkaConfig.Strategy", "sha512")
	v.SetDefault("KafkaConfig.Topic.CompletionTopic", "ask-relay.completion")

	configPath, ok := os.LookupEnv("API_CONFIG_PATH")
	if !ok {
		configPath = "./config"
	}

	configName, ok := os.LookupEnv("API_CONFIG_NAME")
	if !ok {
		configName = "config"
	}

	v.SetConfigName(configName)
	v.AddConfigPath(configPath)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("config file not found. using default/env config: " + err.Error())
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// the historical deployment surface
	_ = v.BindEnv("GeminiConfig.ApiKey", "GEMINI_KEY")
	_ = v.BindEnv("Server.Port", "PORT")

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, err
	}

	if c.Relay.Model == "" {
		c.Relay.Model = defaultModels[c.Provider]
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// ApiKey returns the credential of the configured provider.
func (c Config) ApiKey() string {
	switch c.Provider {
	case ProviderGpt:
		return c.OpenAiConfig.ApiKey
	case ProviderOpenRouter:
		return c.OpenRouterConfig.ApiKey
	default:
		return c.GeminiConfig.ApiKey
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(Config)
		if cfg.ApiKey() == "" {
			sl.ReportError(cfg.Provider, "ApiKey", "ApiKey", "required_for_provider", cfg.Provider)
		}
		if cfg.Relay.Model == "" {
			sl.ReportError(cfg.Relay.Model, "Model", "Model", "required", "")
		}
		if cfg.KafkaConfig.Enable && len(cfg.KafkaConfig.Brokers) == 0 {
			sl.ReportError(cfg.KafkaConfig.Brokers, "Brokers", "Brokers", "min", "1")
		}
	}, Config{})
	return validate.Struct(c)
}
