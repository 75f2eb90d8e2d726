package gateway

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。db/gateway/schema.sql と同期すること。
const schema = `
CREATE TABLE IF NOT EXISTS users (
    -- ユーザーの一意識別子（UUID）
    id TEXT PRIMARY KEY,
    -- 表示名
    name TEXT NOT NULL,
    -- メールアドレス（ログインID）
    email TEXT NOT NULL UNIQUE,
    -- bcryptでハッシュ化されたパスワード
    password_hash TEXT NOT NULL,
    -- ロール（participant / organizer / admin）
    role TEXT NOT NULL DEFAULT 'participant',
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    -- 更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

-- ロール別のユーザーID一覧取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
