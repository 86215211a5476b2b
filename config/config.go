package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	Database     DatabaseConfigs     `toml:"database"`
	ApiServer    APIServerConfigs    `toml:"api_server"`
	MetricServer ServerConfigs       `toml:"metric_server"`
	Auth         AuthConfigs         `toml:"auth"`
	Party        PartyConfigs        `toml:"party"`
	Notification NotificationConfigs `toml:"notification"`
	Redis        RedisConfigs        `toml:"redis"`
	Kafka        KafkaConfigs        `toml:"kafka"`
	SMTP         SMTPConfigs         `toml:"smtp"`
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// SQLitePath is used only by the sqlite driver.
	SQLitePath string `toml:"sqlite_path"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	AllowedOrigins []string `toml:"allowed_origins"`
}

type AuthConfigs struct {
	// PasscodeSecret seals stored passcodes so that they can be re-delivered
	// to the organizer.
	PasscodeSecret string `toml:"passcode_secret"`

	// PasscodeCost is the bcrypt cost of the stored passcode digest.
	PasscodeCost int `toml:"passcode_cost"`
}

type PartyConfigs struct {
	IDLength       int `toml:"id_length"`
	PasscodeLength int `toml:"passcode_length"`

	// HoldTimeout bounds the wait for the per-party exclusive hold.
	HoldTimeout time.Duration `toml:"hold_timeout"`

	// HoldTTL is the expiry of a redis hold, after which a crashed holder
	// can no longer block the party.
	HoldTTL time.Duration `toml:"hold_ttl"`

	// HoldBackend is either "local" or "redis".
	HoldBackend string `toml:"hold_backend"`

	MatchingTimeout time.Duration `toml:"matching_timeout"`
}

type NotificationConfigs struct {
	// Backend is one of "smtp", "kafka" or "log".
	Backend     string        `toml:"backend"`
	Timeout     time.Duration `toml:"timeout"`
	Concurrency int           `toml:"concurrency"`
	Topic       string        `toml:"topic"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr    string `toml:"addr"`
	GroupID string `toml:"group_id"`
}

type SMTPConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Sender   string `toml:"sender"`
}

func (c SMTPConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
