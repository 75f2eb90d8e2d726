package registration

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。db/registration/schema.sql と同期すること。
const schema = `
CREATE TABLE IF NOT EXISTS registrations (
    -- 参加登録の一意識別子（UUID）
    id TEXT PRIMARY KEY,
    -- 参加者のユーザーID
    user_id TEXT NOT NULL,
    -- 対象イベントのID
    event_id TEXT NOT NULL,
    -- チェックイン済みかどうか
    checked_in INTEGER NOT NULL DEFAULT 0,
    -- チェックイン用QRコードのペイロード（JSON）
    qr_code TEXT NOT NULL,
    -- 最後にQRコードがスキャンされた日時（未スキャンはNULL）
    last_scanned_at DATETIME,
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    -- 更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

-- 同一ユーザーの同一イベントへの重複登録を防ぐ。
CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_user_event
    ON registrations(user_id, event_id);

-- イベントごとの登録者一覧取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_registrations_event
    ON registrations(event_id);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
