package rtevent

import (
	"encoding/json"
)

// Type はリアルタイム配信イベントの種類を表す。
type Type string

const (
	// TypeConnected は接続確立の応答イベントを表す。
	TypeConnected Type = "connected"
	// TypeNotificationNew は新規通知の配信イベントを表す。
	TypeNotificationNew Type = "notification:new"
)

// Envelope はWebSocket経由で配信されるイベントフレームを表す。
// すべてのリアルタイム配信はこの構造体にラップして送信される。
type Envelope struct {
	// Event はイベントの種類。
	Event Type `json:"event"`
	// Data はイベント固有のペイロード（JSON形式）。
	Data json.RawMessage `json:"data"`
}

// ConnectedData はconnectedイベントのペイロード。
type ConnectedData struct {
	// OK は接続が確立されたことを表す。
	OK bool `json:"ok"`
}

// NotificationData はnotification:newイベントのペイロード。
// 永続化された通知レコードの全フィールドをそのまま配信する。
// フィールド名は既存クライアントとの互換性のためcamelCaseで固定する。
type NotificationData struct {
	// ID は通知の一意識別子。
	ID string `json:"id"`
	// User は通知先のユーザーID。
	User string `json:"user"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// Read は通知の既読状態。
	Read bool `json:"read"`
	// LinkType は関連エンティティの種類（"event" / "user" など、空は未分類）。
	LinkType string `json:"linkType"`
	// LinkID は関連エンティティの識別子。
	LinkID string `json:"linkId"`
	// CreatedAt は通知の作成日時（RFC3339形式）。
	CreatedAt string `json:"createdAt"`
	// UpdatedAt は通知の更新日時（RFC3339形式）。
	UpdatedAt string `json:"updatedAt"`
}
