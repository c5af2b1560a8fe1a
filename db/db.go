package db

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB 全局数据库连接
var DB *sql.DB

// Init 初始化数据库
func Init(dbPath string) error {
	var err error
	// 使用 DSN 参数配置 WAL 模式和超时，确保连接池中的所有连接都生效
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	DB, err = sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	// 限制连接数以避免在极高并发下触发 SQLite 锁定
	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(time.Hour)

	// 创建表
	// 三组标签以 JSON 数组存储: 手动标签由用户维护, 自动标签每次生成整体覆盖,
	// removed_auto_tags 记录用户显式移除的自动标签(重新打标时不会再次应用)
	schema := `
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		author TEXT DEFAULT '',
		manual_tags TEXT DEFAULT '[]',
		auto_tags TEXT DEFAULT '[]',
		removed_auto_tags TEXT DEFAULT '[]',
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
		date_modified DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_author ON quotes(author);
	CREATE INDEX IF NOT EXISTS idx_quotes_date_added ON quotes(date_added DESC);
	`

	_, err = DB.Exec(schema)
	if err != nil {
		return err
	}

	log.Printf("✅ 数据库初始化成功 (WAL模式): %s", dbPath)
	return nil
}

// Close 关闭数据库连接
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
