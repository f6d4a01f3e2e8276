package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken       string        `envconfig:"BOT_TOKEN" required:"true"`
	InitialAdminID string        `envconfig:"INITIAL_ADMIN_ID"`
	StoreBackend   string        `envconfig:"STORE_BACKEND" default:"json"` // json|sqlite
	DataDir        string        `envconfig:"DATA_DIR" default:"./data"`
	DBPath         string        `envconfig:"DB_PATH" default:"./data/checklist.db"`
	TZName         string        `envconfig:"TZ_NAME" default:"Africa/Addis_Ababa"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	SelfTestDelay  time.Duration `envconfig:"SELF_TEST_DELAY" default:"60s"`
	SchedulerTick  time.Duration `envconfig:"SCHEDULER_TICK" default:"15s"`
}

// Load reads an optional .env file and then environment variables into Config.
// Variables already present in the environment win over .env values.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves TZName. All weekly slots are interpreted in this zone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TZName)
}
