package config

import (
	"time"
)

// ETLConfig содержит конфигурацию для ETL-процесса
type ETLConfig struct {
	// Входные файлы
	Sources SourcesConfig `yaml:"sources"`

	// Загрузка данных App Store через iTunes Search API
	ITunes ITunesConfig `yaml:"itunes"`

	// Каталоги выходных файлов
	Output OutputConfig `yaml:"output"`

	// SQL-хранилище единой таблицы и журнала запусков
	Database DatabaseConfig `yaml:"database"`

	// HTTP-сервер запросов к рынку
	Server ServerConfig `yaml:"server"`

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `yaml:"run_interval" env:"MI_RUN_INTERVAL"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `yaml:"verbose" env:"MI_VERBOSE"`

	// Каталог лог-файлов
	LogDir string `yaml:"log_dir" env:"MI_LOG_DIR"`
}

// SourcesConfig содержит пути к исходным файлам
type SourcesConfig struct {
	PlayStoreCSV string `yaml:"playstore_csv" env:"MI_PLAYSTORE_CSV"`
	D2CWorkbook  string `yaml:"d2c_workbook" env:"MI_D2C_XLSX"`
}

// ITunesConfig содержит настройки обращения к iTunes Search API
type ITunesConfig struct {
	Enabled      bool          `yaml:"enabled" env:"MI_ITUNES_ENABLED"`
	BaseURL      string        `yaml:"base_url" env:"MI_ITUNES_BASE_URL"`
	Country      string        `yaml:"country" env:"MI_ITUNES_COUNTRY"`
	Limit        int           `yaml:"limit" env:"MI_ITUNES_LIMIT"`
	RequestDelay time.Duration `yaml:"request_delay" env:"MI_ITUNES_DELAY"`
	Timeout      time.Duration `yaml:"timeout" env:"MI_ITUNES_TIMEOUT"`
	SearchTerms  []string      `yaml:"search_terms" env:"MI_ITUNES_TERMS"`
	// Файл кэша ответов; при UseCache=true данные читаются из него без обращения к API
	CacheFile string `yaml:"cache_file" env:"MI_ITUNES_CACHE"`
	UseCache  bool   `yaml:"use_cache" env:"MI_ITUNES_USE_CACHE"`
}

// OutputConfig содержит каталоги выходных файлов
type OutputConfig struct {
	DataDir      string `yaml:"data_dir" env:"MI_DATA_DIR"`
	ReportsDir   string `yaml:"reports_dir" env:"MI_REPORTS_DIR"`
	D2CDir       string `yaml:"d2c_dir" env:"MI_D2C_DIR"`
	WriteArchive bool   `yaml:"write_archive" env:"MI_WRITE_ARCHIVE"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled" env:"MI_DB_ENABLED"`
	Driver   string `yaml:"driver" env:"MI_DB_DRIVER"`
	Host     string `yaml:"host" env:"MI_DB_HOST"`
	Port     int    `yaml:"port" env:"MI_DB_PORT"`
	User     string `yaml:"user" env:"MI_DB_USER"`
	Password string `yaml:"password" env:"MI_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"MI_DB_NAME"`
	// Файл базы для драйвера sqlite
	Path string `yaml:"path" env:"MI_DB_PATH"`
}

// ServerConfig содержит настройки сервера запросов
type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"MI_SERVER_ADDR"`
	ReloadInterval time.Duration `yaml:"reload_interval" env:"MI_SERVER_RELOAD"`
}

// DefaultSearchTerms - поисковые запросы для выборки приложений App Store
var DefaultSearchTerms = []string{
	"instagram", "whatsapp", "spotify", "netflix", "uber", "airbnb",
	"youtube", "facebook", "twitter", "tiktok", "snapchat", "linkedin",
	"zoom", "teams", "slack", "discord", "telegram", "pinterest",
	"amazon", "ebay", "paypal", "cashapp", "venmo", "banking",
	"fitness", "meditation", "calendar", "notes", "weather", "maps",
	"games", "puzzle", "racing", "rpg", "strategy", "action",
	"photo", "camera", "editor", "music", "podcast", "news",
	"shopping", "food", "travel", "booking", "recipe", "health",
}

// Значения конфигурации по умолчанию
var (
	DefaultDatabaseConfig = DatabaseConfig{
		Enabled: true,
		Driver:  DriverSQLite,
		Host:    "localhost",
		Port:    3306,
		User:    "root",
		DBName:  "appmarket_intel",
		Path:    "data/appmarket_intel.db",
	}

	DefaultETLConfig = ETLConfig{
		Sources: SourcesConfig{
			PlayStoreCSV: "data/raw/googleplaystore.csv",
			D2CWorkbook:  "data/raw/d2c_marketing_data.xlsx",
		},
		ITunes: ITunesConfig{
			Enabled:      true,
			BaseURL:      "https://itunes.apple.com",
			Country:      "us",
			Limit:        20,
			RequestDelay: 500 * time.Millisecond,
			Timeout:      30 * time.Second,
			CacheFile:    "data/raw/itunes_apps.json",
		},
		Output: OutputConfig{
			DataDir:      "data/processed",
			ReportsDir:   "reports",
			D2CDir:       "data/d2c_analysis",
			WriteArchive: true,
		},
		Database: DefaultDatabaseConfig,
		Server: ServerConfig{
			Addr:           ":8080",
			ReloadInterval: 5 * time.Minute,
		},
		RunInterval:           24 * time.Hour,
		EnableDetailedLogging: false,
		LogDir:                "logs",
	}
)

// GetConfig возвращает конфигурацию ETL по умолчанию
func GetConfig() ETLConfig {
	config := DefaultETLConfig
	config.ITunes.SearchTerms = append([]string(nil), DefaultSearchTerms...)
	return config
}
