package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/questx-lab/secretsanta/config"
)

// loadConfig reads the environment, then overlays the TOML file at path if
// any. Keys absent from the file keep their environment value.
func (s *srv) loadConfig(path string) error {
	s.configs = &config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Driver:     getEnv("DB_DRIVER", "mysql"),
			Host:       getEnv("MYSQL_HOST", "localhost"),
			Port:       getEnv("MYSQL_PORT", "3306"),
			Database:   getEnv("MYSQL_DATABASE", "santa"),
			User:       getEnv("MYSQL_USER", "mysql"),
			Password:   getEnv("MYSQL_PASSWORD", "mysql"),
			SQLitePath: getEnv("SQLITE_PATH", "santa.db"),
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{
				Host: getEnv("API_HOST", ""),
				Port: getEnv("API_PORT", "8080"),
			},
			AllowedOrigins: getListEnv("API_ALLOWED_ORIGINS", []string{"*"}),
		},
		MetricServer: config.ServerConfigs{
			Host: getEnv("METRIC_HOST", ""),
			Port: getEnv("METRIC_PORT", "9090"),
		},
		Auth: config.AuthConfigs{
			PasscodeSecret: getEnv("PASSCODE_SECRET", "passcode_secret"),
			PasscodeCost:   parseInt(getEnv("PASSCODE_COST", "10")),
		},
		Party: config.PartyConfigs{
			IDLength:        parseInt(getEnv("PARTY_ID_LENGTH", "8")),
			PasscodeLength:  parseInt(getEnv("PARTY_PASSCODE_LENGTH", "12")),
			HoldTimeout:     parseDuration(getEnv("PARTY_HOLD_TIMEOUT", "10s")),
			HoldTTL:         parseDuration(getEnv("PARTY_HOLD_TTL", "1m")),
			HoldBackend:     getEnv("PARTY_HOLD_BACKEND", "local"),
			MatchingTimeout: parseDuration(getEnv("PARTY_MATCHING_TIMEOUT", "5s")),
		},
		Notification: config.NotificationConfigs{
			Backend:     getEnv("NOTIFICATION_BACKEND", "log"),
			Timeout:     parseDuration(getEnv("NOTIFICATION_TIMEOUT", "10s")),
			Concurrency: parseInt(getEnv("NOTIFICATION_CONCURRENCY", "4")),
			Topic:       getEnv("NOTIFICATION_TOPIC", "mail"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr:    getEnv("KAFKA_ADDRESS", "localhost:9092"),
			GroupID: getEnv("KAFKA_GROUP_ID", "mailer"),
		},
		SMTP: config.SMTPConfigs{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			Sender:   getEnv("SMTP_SENDER", "santa@localhost"),
		},
	}

	if path == "" {
		return nil
	}

	_, err := toml.DecodeFile(path, s.configs)
	return err
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getListEnv(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	result := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}

	return duration
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}

	return i
}
