package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Backup   BackupConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// DatabaseConfig selects the storage engine. Driver "sqlite3" uses Path;
// "postgres" uses the host/port/credential fields.
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	ExportDir string
	BackupDir string
	Locale    string

	// Report defaults, overridable per request.
	AMCMonths          int
	ExpiryPeriodMonths int
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// BackupConfig holds the optional S3-compatible target for pushing backup
// archives off the box. Empty endpoint means local backups only.
type BackupConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_DRIVER", "sqlite3")
		viper.SetDefault("DB_PATH", "./iseprep.db")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "iseprep")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_EXPORT_DIR", "./data/exports")
		viper.SetDefault("APP_BACKUP_DIR", "./data/backups")
		viper.SetDefault("APP_LOCALE", "en")
		viper.SetDefault("APP_AMC_MONTHS", 6)
		viper.SetDefault("APP_EXPIRY_PERIOD_MONTHS", 12)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 60)
		viper.SetDefault("BACKUP_S3_ENDPOINT", "")
		viper.SetDefault("BACKUP_S3_ACCESS_KEY", "")
		viper.SetDefault("BACKUP_S3_SECRET_KEY", "")
		viper.SetDefault("BACKUP_S3_BUCKET", "")
		viper.SetDefault("BACKUP_S3_REGION", "")
		viper.SetDefault("BACKUP_S3_USE_SSL", true)

		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_EXPORT_DIR"))
		ensureDir(viper.GetString("APP_BACKUP_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Driver:   viper.GetString("DB_DRIVER"),
				Path:     viper.GetString("DB_PATH"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				ExportDir:          viper.GetString("APP_EXPORT_DIR"),
				BackupDir:          viper.GetString("APP_BACKUP_DIR"),
				Locale:             viper.GetString("APP_LOCALE"),
				AMCMonths:          viper.GetInt("APP_AMC_MONTHS"),
				ExpiryPeriodMonths: viper.GetInt("APP_EXPIRY_PERIOD_MONTHS"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Backup: BackupConfig{
				Endpoint:  viper.GetString("BACKUP_S3_ENDPOINT"),
				AccessKey: viper.GetString("BACKUP_S3_ACCESS_KEY"),
				SecretKey: viper.GetString("BACKUP_S3_SECRET_KEY"),
				Bucket:    viper.GetString("BACKUP_S3_BUCKET"),
				Region:    viper.GetString("BACKUP_S3_REGION"),
				UseSSL:    viper.GetBool("BACKUP_S3_USE_SSL"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
