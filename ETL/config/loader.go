package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// loadEnvFiles загружает .env файлы: ENV_FILE, если задан, иначе .env.local и .env.
// Отсутствие файлов ошибкой не считается.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка загрузки %s: %w", envFile, err)
		}
		return nil
	}

	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка загрузки %s: %w", name, err)
		}
	}

	return nil
}

// Load возвращает конфигурацию: значения по умолчанию, поверх них YAML-файл (если path не пустой
// и файл существует), поверх них переменные окружения MI_*.
func Load(path string) (ETLConfig, error) {
	cfg := GetConfig()

	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(reflect.ValueOf(&cfg).Elem())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c ETLConfig) Validate() error {
	if c.Sources.PlayStoreCSV == "" {
		return errors.New("не указан путь к CSV Google Play")
	}
	if c.Database.Enabled && c.Database.Driver != DriverMySQL && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("неподдерживаемый драйвер базы данных: %q", c.Database.Driver)
	}
	if c.ITunes.Limit <= 0 {
		return fmt.Errorf("некорректный лимит iTunes: %d", c.ITunes.Limit)
	}
	if c.RunInterval <= 0 {
		return fmt.Errorf("некорректный интервал запуска: %v", c.RunInterval)
	}
	if c.Server.ReloadInterval <= 0 {
		return fmt.Errorf("некорректный интервал перезагрузки данных: %v", c.Server.ReloadInterval)
	}
	return nil
}

// applyEnvOverrides заполняет поля с тегом env из переменных окружения
func applyEnvOverrides(v reflect.Value) {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			applyEnvOverrides(field)
			continue
		}

		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" {
			continue
		}
		if envVal := os.Getenv(envTag); envVal != "" {
			setFieldFromString(field, envVal)
		}
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}

	case reflect.Bool:
		if b, err := strconv.ParseBool(val); err == nil {
			field.SetBool(b)
		}

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		var items []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	}
}
