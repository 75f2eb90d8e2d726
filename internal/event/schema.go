package event

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。db/event/schema.sql と同期すること。
const schema = `
CREATE TABLE IF NOT EXISTS events (
    -- イベントの一意識別子（UUID）
    id TEXT PRIMARY KEY,
    -- イベントのタイトル
    title TEXT NOT NULL,
    -- イベントの説明
    description TEXT NOT NULL,
    -- 開催場所
    location TEXT NOT NULL DEFAULT '',
    -- ポスター画像のURL
    poster TEXT NOT NULL DEFAULT '',
    -- 開催日時
    date DATETIME NOT NULL,
    -- イベントのカテゴリ
    category TEXT NOT NULL,
    -- 主催者のユーザーID
    organizer_id TEXT NOT NULL,
    -- 承認状態（管理者が作成した場合は作成時に承認済み）
    is_approved INTEGER NOT NULL DEFAULT 0,
    -- 中止状態
    is_cancelled INTEGER NOT NULL DEFAULT 0,
    -- 中止理由
    cancel_reason TEXT NOT NULL DEFAULT '',
    -- 有料イベントかどうか
    is_paid INTEGER NOT NULL DEFAULT 0,
    -- 参加費（無料イベントは0）
    price REAL NOT NULL DEFAULT 0,
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    -- 更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

-- 公開一覧（承認済みを開催日順）の取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_events_approved_date
    ON events(is_approved, date);

-- 主催者ごとの一覧取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_events_organizer
    ON events(organizer_id, created_at DESC);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
