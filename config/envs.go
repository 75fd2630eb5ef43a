package config

import (
	"log"
	"os"
	"strconv"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/beka-birhanu/vinom-territory-server/game"
	"github.com/beka-birhanu/vinom-territory-server/service"
	"github.com/beka-birhanu/vinom-territory-server/service/i"
	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	ProxyIP  string // Address the gRPC and HTTP listeners bind to
	HostIP   string // Host IP of the UDP socket
	GrpcPort int    // Port for the GRPC server
	HTTPPort int    // Port for the WebSocket endpoint

	UdpPort                int // Port for the UDP socket
	UDPBufferSize          int // Size of the buffer for incoming UDP packets (in bytes)
	UDPHeartbeatExpiration int // Expiration time for UDP heartbeat (in milliseconds)

	ArenaWidth       float64
	ArenaHeight      float64
	ArenaMinSize     float64
	SpawnInset       float64
	PlayerSpeed      float64
	PlayerHalfSize   float64
	TickMs           int
	MatchSeconds     int
	ShrinkAfterSecs  int
	ShrinkRate       float64
	TrailGrace       int
	TrailSendCap     int
	PointsPerSegment int

	LobbyCodeLength   int
	LobbyCodeAlphabet string
	MaxLobbies        int
	CleanupDelayMs    int
	MailboxSize       int
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	defaults := game.DefaultRules()
	return Config{
		ProxyIP:  mustGetEnv("PROXY_IP"),
		HostIP:   mustGetEnv("HOST_IP"),
		GrpcPort: mustGetEnvAsInt("GRPC_PORT"),
		HTTPPort: mustGetEnvAsInt("HTTP_PORT"),

		UdpPort:                mustGetEnvAsInt("UDP_PORT"),
		UDPBufferSize:          mustGetEnvAsInt("UDP_BUFFER_SIZE"),
		UDPHeartbeatExpiration: mustGetEnvAsInt("UDP_HEARTBEAT_EXPIRATION"),

		ArenaWidth:       getEnvAsFloat("ARENA_WIDTH", defaults.ArenaWidth),
		ArenaHeight:      getEnvAsFloat("ARENA_HEIGHT", defaults.ArenaHeight),
		ArenaMinSize:     getEnvAsFloat("ARENA_MIN_SIZE", defaults.MinArenaSize),
		SpawnInset:       getEnvAsFloat("SPAWN_INSET", defaults.SpawnInset),
		PlayerSpeed:      getEnvAsFloat("PLAYER_SPEED", defaults.PlayerSpeed),
		PlayerHalfSize:   getEnvAsFloat("PLAYER_HALF_SIZE", defaults.PlayerHalfSize),
		TickMs:           getEnvAsInt("TICK_MS", int(defaults.TickPeriod/time.Millisecond)),
		MatchSeconds:     getEnvAsInt("MATCH_SECONDS", int(defaults.MatchDuration/time.Second)),
		ShrinkAfterSecs:  getEnvAsInt("SHRINK_AFTER_SECONDS", int(defaults.ShrinkAfter/time.Second)),
		ShrinkRate:       getEnvAsFloat("SHRINK_RATE", defaults.ShrinkRate),
		TrailGrace:       getEnvAsInt("TRAIL_GRACE", defaults.TrailGrace),
		TrailSendCap:     getEnvAsInt("TRAIL_SEND_CAP", defaults.TrailSendCap),
		PointsPerSegment: getEnvAsInt("POINTS_PER_SEGMENT", defaults.PointsPerSegment),

		LobbyCodeLength:   getEnvAsInt("LOBBY_CODE_LENGTH", 6),
		LobbyCodeAlphabet: getEnv("LOBBY_CODE_ALPHABET", "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"),
		MaxLobbies:        getEnvAsInt("MAX_LOBBIES", 100),
		CleanupDelayMs:    getEnvAsInt("CLEANUP_DELAY_MS", 3000),
		MailboxSize:       getEnvAsInt("MAILBOX_SIZE", 64),
	}
}

// Rules returns the match rules described by the environment.
func (c Config) Rules() game.Rules {
	return game.Rules{
		ArenaWidth:       c.ArenaWidth,
		ArenaHeight:      c.ArenaHeight,
		MinArenaSize:     c.ArenaMinSize,
		SpawnInset:       c.SpawnInset,
		PlayerSpeed:      c.PlayerSpeed,
		PlayerHalfSize:   c.PlayerHalfSize,
		TickPeriod:       time.Duration(c.TickMs) * time.Millisecond,
		MatchDuration:    time.Duration(c.MatchSeconds) * time.Second,
		ShrinkAfter:      time.Duration(c.ShrinkAfterSecs) * time.Second,
		ShrinkRate:       c.ShrinkRate,
		TrailGrace:       c.TrailGrace,
		TrailSendCap:     c.TrailSendCap,
		PointsPerSegment: c.PointsPerSegment,
	}
}

// RegistryConfig returns the lobby registry settings described by the environment.
func (c Config) RegistryConfig(b i.Broadcaster, l general_i.Logger) *service.Config {
	return &service.Config{
		Rules:        c.Rules(),
		CodeLength:   c.LobbyCodeLength,
		CodeAlphabet: c.LobbyCodeAlphabet,
		MaxLobbies:   c.MaxLobbies,
		CleanupDelay: time.Duration(c.CleanupDelayMs) * time.Millisecond,
		Broadcaster:  b,
		Logger:       l,
	}
}

func (c Config) UDPHeartbeat() time.Duration {
	return time.Duration(c.UDPHeartbeatExpiration) * time.Millisecond
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("%s[APP]%s %s[FATAL]%s Environment variable %s is not set", ColorGreen, ColorReset, ColorRed, ColorReset, key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr, ok := os.LookupEnv(key)
	if !ok || valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr, ok := os.LookupEnv(key)
	if !ok || valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}
