package config

import (
	"log"
	"os"
	"time"

	"github.com/guji3/ping/pkg/cache"
	"github.com/guji3/ping/pkg/logger"
	"github.com/guji3/ping/pkg/notification"
	"github.com/guji3/ping/pkg/util"
)

type Config struct {
	Addr     string `env:"ADDR"`
	Mode     string `env:"MODE"` // gin mode: debug / release
	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`

	Log   logger.LogConfig
	Cache cache.Config

	JWTSecret      string `env:"JWT_SECRET"`
	JWTExpireHours int64  `env:"JWT_EXPIRE_HOURS"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	WhisperModel  string `env:"WHISPER_MODEL"`
	AnalysisModel string `env:"ANALYSIS_MODEL"`
	AudioLanguage string `env:"AUDIO_LANGUAGE"`

	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`

	SMSProvider string `env:"SMS_PROVIDER"` // console / aliyun
	Aliyun      notification.AliyunSMSConfig

	RateLimit        string        `env:"RATE_LIMIT"`         // e.g. "60-M"
	AlertDedupWindow time.Duration `env:"ALERT_DEDUP_WINDOW"` // seconds; 0 disables
	StatsSchedule    string        `env:"STATS_SCHEDULE"`     // cron spec for the daily stats job
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		Addr:     util.GetEnv("ADDR", ":8080"),
		Mode:     util.GetEnv("MODE", "debug"),
		DBDriver: util.GetEnv("DB_DRIVER", "sqlite"),
		DSN:      util.GetEnv("DSN", "ping.db"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL", "info"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE", 100)),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE", 7)),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS", 3)),
		},
		Cache: cache.Config{
			Type: util.GetEnv("CACHE_TYPE", "local"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
			},
		},
		JWTSecret:      util.GetEnv("JWT_SECRET", "ping-dev-secret"),
		JWTExpireHours: util.GetIntEnv("JWT_EXPIRE_HOURS", 24),
		OpenAIAPIKey:   util.GetEnv("OPENAI_API_KEY"),
		OpenAIBaseURL:  util.GetEnv("OPENAI_BASE_URL"),
		WhisperModel:   util.GetEnv("WHISPER_MODEL", "whisper-1"),
		AnalysisModel:  util.GetEnv("ANALYSIS_MODEL", "gpt-4"),
		AudioLanguage:  util.GetEnv("AUDIO_LANGUAGE", "ko"),

		GoogleMapsAPIKey: util.GetEnv("GOOGLE_MAPS_API_KEY"),

		SMSProvider: util.GetEnv("SMS_PROVIDER", "console"),
		Aliyun: notification.AliyunSMSConfig{
			AccessKeyId:     util.GetEnv("ALIYUN_SMS_ACCESS_KEY_ID"),
			AccessKeySecret: util.GetEnv("ALIYUN_SMS_ACCESS_KEY_SECRET"),
			SignName:        util.GetEnv("ALIYUN_SMS_SIGN_NAME"),
			TemplateCode:    util.GetEnv("ALIYUN_SMS_TEMPLATE_CODE"),
			Endpoint:        util.GetEnv("ALIYUN_SMS_ENDPOINT"),
		},

		RateLimit:        util.GetEnv("RATE_LIMIT", "60-M"),
		AlertDedupWindow: time.Duration(util.GetIntEnv("ALERT_DEDUP_WINDOW")) * time.Second,
		StatsSchedule:    util.GetEnv("STATS_SCHEDULE", "0 0 * * *"),
	}
	return nil
}
