package notification

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。db/notification/schema.sql と同期すること。
const schema = `
CREATE TABLE IF NOT EXISTS notifications (
    -- 通知の一意識別子（UUID）
    id TEXT PRIMARY KEY,
    -- 通知先のユーザーID（所有者。全操作の必須フィルタ）
    user_id TEXT NOT NULL,
    -- 通知のタイトル
    title TEXT NOT NULL,
    -- 通知メッセージ
    message TEXT NOT NULL,
    -- 通知の既読状態（0→1の一方向遷移）
    is_read INTEGER NOT NULL DEFAULT 0,
    -- 関連エンティティの種類（"event" / "user" など、空は未分類）
    link_type TEXT NOT NULL DEFAULT '',
    -- 関連エンティティの識別子
    link_id TEXT NOT NULL DEFAULT '',
    -- 通知の作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    -- 通知の更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

-- ユーザーの新着順フィード取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_notifications_user_created
    ON notifications(user_id, created_at DESC);

-- 既読状態でのフィルタを高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_notifications_user_read
    ON notifications(user_id, is_read);

-- 関連種類でのフィルタを高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_notifications_user_link_type
    ON notifications(user_id, link_type);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
