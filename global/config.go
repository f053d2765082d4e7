package global

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"MChat/logger"
	"MChat/tools/ids"
)

// AppConfig is the process-wide configuration, populated from the
// environment (an optional .env file is loaded first).
type AppConfig struct {
	HTTPAddr string

	MongoURI      string
	MongoDatabase string
	MongoPoolSize int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration

	CDNEndpoint string // image CDN upload endpoint; empty disables uploads
	CDNAPIKey   string

	NodeID int64

	// websocket tuning
	PingInterval  time.Duration // server ping cadence
	PongWait      time.Duration // idle-keepalive: missing pongs for this long counts as disconnect
	WriteWait     time.Duration
	ReadLimit     int64
	SendQueueSize int
}

var conf *AppConfig

// Init loads configuration once from the environment and wires process
// globals that depend on it (snowflake node id).
func Init() *AppConfig {
	if conf != nil {
		return conf
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded")
	}

	c := &AppConfig{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		MongoURI:      getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "mchat"),
		MongoPoolSize: getenvInt("MONGO_POOL_SIZE", 100),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret-do-not-ship"),
		TokenTTL:      getenvDur("TOKEN_TTL", 2*time.Hour),
		CDNEndpoint:   os.Getenv("CDN_ENDPOINT"),
		CDNAPIKey:     os.Getenv("CDN_API_KEY"),
		NodeID:        int64(getenvInt("NODE_ID", 1)),
		PingInterval:  getenvDur("WS_PING_INTERVAL", 25*time.Second),
		PongWait:      getenvDur("WS_PONG_WAIT", 75*time.Second),
		WriteWait:     getenvDur("WS_WRITE_WAIT", 5*time.Second),
		ReadLimit:     int64(getenvInt("WS_READ_LIMIT", 1<<20)),
		SendQueueSize: getenvInt("WS_SEND_QUEUE", 256),
	}
	c.norm()

	ids.SetNodeID(c.NodeID)
	conf = c
	return conf
}

// Config returns the loaded configuration; Init must run first.
func Config() *AppConfig {
	if conf == nil {
		panic("global config not initialized, call global.Init first")
	}
	return conf
}

func (c *AppConfig) norm() {
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.PongWait <= c.PingInterval {
		c.PongWait = 3 * c.PingInterval
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 5 * time.Second
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warnf("config %s=%q is not an int, using %d", key, v, def)
		return def
	}
	return n
}

func getenvDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warnf("config %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}
