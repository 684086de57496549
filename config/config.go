package config

import (
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host          string `yaml:"host" json:"host"`
	Port          int    `yaml:"port" json:"port"`
	Secret        string `yaml:"secret" json:"secret"`
	SessionTTL    int    `yaml:"session_ttl" json:"session_ttl"`         // seconds
	RatePerMinute int    `yaml:"rate_per_minute" json:"rate_per_minute"` // per-client request ceiling
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// MediaConfig points at the external image-hosting service.
type MediaConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	APIKey   string `yaml:"api_key" json:"api_key"`
	Secret   string `yaml:"secret" json:"secret"`
	Folder   string `yaml:"folder" json:"folder"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Database DBConfig    `yaml:"database" json:"database"`
	Media    MediaConfig `yaml:"media" json:"media"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "shopinventory",
		Location: "Asia/Shanghai",
		Workdir:  "/var/shopinventory",
		Debug:    true,
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		Secret:        "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		SessionTTL:    86400,
		RatePerMinute: 40,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "shopinventory",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Media: MediaConfig{
		Endpoint: "https://api.cloudinary.com/v1_1/demo/image",
		Folder:   "shoppingInventory",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/shopinventory/shopinventory.log",
	},
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToInt(v)
	}
}

// LoadConfig reads the yaml config file when present, otherwise starts from
// defaults, then applies SHOPINV_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("SHOPINV_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("SHOPINV_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("SHOPINV_WEB_HOST", &cfg.Web.Host)
	setEnvValue("SHOPINV_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("SHOPINV_WEB_PORT", &cfg.Web.Port)
	setEnvIntValue("SHOPINV_WEB_SESSION_TTL", &cfg.Web.SessionTTL)
	setEnvIntValue("SHOPINV_WEB_RATE_PER_MINUTE", &cfg.Web.RatePerMinute)

	setEnvValue("SHOPINV_DB_TYPE", &cfg.Database.Type)
	setEnvValue("SHOPINV_DB_HOST", &cfg.Database.Host)
	setEnvValue("SHOPINV_DB_NAME", &cfg.Database.Name)
	setEnvValue("SHOPINV_DB_USER", &cfg.Database.User)
	setEnvValue("SHOPINV_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("SHOPINV_DB_PORT", &cfg.Database.Port)
	setEnvBoolValue("SHOPINV_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("SHOPINV_MEDIA_ENDPOINT", &cfg.Media.Endpoint)
	setEnvValue("SHOPINV_MEDIA_API_KEY", &cfg.Media.APIKey)
	setEnvValue("SHOPINV_MEDIA_SECRET", &cfg.Media.Secret)
	setEnvValue("SHOPINV_MEDIA_FOLDER", &cfg.Media.Folder)

	setEnvValue("SHOPINV_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("SHOPINV_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("SHOPINV_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}
