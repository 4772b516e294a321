package config

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Поддерживаемые драйверы базы данных
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DSN возвращает строку подключения для драйвера
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

// ConnectDatabase устанавливает подключение к базе данных и проверяет его
func ConnectDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == DriverSQLite {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("ошибка создания каталога базы данных %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных (%s): %w", cfg.Driver, err)
	}

	// Настройка параметров подключения
	if cfg.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой данных (%s): %w", cfg.Driver, err)
	}

	return db, nil
}

// CloseDatabase закрывает подключение к базе данных
func CloseDatabase(db *sql.DB) error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("ошибка при закрытии соединения с базой данных: %w", err)
	}
	return nil
}
