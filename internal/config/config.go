package config

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level"   env:"LOG_LEVEL"   env-default:"info"`
	HTTPPort   string `yaml:"http-port"   env:"HTTP_PORT"   env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Room       Room   `yaml:"room"`
	Chat       Chat   `yaml:"chat"`
	Player     Player `yaml:"player"`
}

type Redis struct {
	Host     string `yaml:"host"     env:"REDIS_HOST"     env-default:"localhost"`
	Port     string `yaml:"port"     env:"REDIS_PORT"     env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"       env-default:"0"`
}

type Room struct {
	TTL time.Duration `yaml:"ttl" env:"ROOM_TTL" env-default:"1h"`
}

type Chat struct {
	HistorySize   int           `yaml:"history-size"   env:"CHAT_HISTORY_SIZE"   env-default:"50"`
	TTL           time.Duration `yaml:"ttl"            env:"CHAT_TTL"            env-default:"24h"`
	CensoredWords []string      `yaml:"censored-words" env:"CHAT_CENSORED_WORDS" env-separator:","`
	CensorChar    string        `yaml:"censor-char"    env:"CHAT_CENSOR_CHAR"    env-default:"*"`
}

// Player - settings of the terminal client.
type Player struct {
	ServerURL string `yaml:"server-url" env:"PLAYER_SERVER_URL" env-default:"ws://localhost:8080/ws"`
	RoomID    string `yaml:"room-id"    env:"PLAYER_ROOM_ID"    env-default:"lobby"`
	Colored   bool   `yaml:"colored"    env:"PLAYER_COLORED"    env-default:"true"`
	Autoplay  bool   `yaml:"autoplay"   env:"PLAYER_AUTOPLAY"   env-default:"false"`
}

// Load - reads path and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Mask - the rune censored words are replaced with.
func (that *Chat) Mask() rune {
	r, _ := utf8.DecodeRuneInString(that.CensorChar)
	if r == utf8.RuneError {
		return '*'
	}

	return r
}
