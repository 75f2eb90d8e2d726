// Package notification は通知サービスの内部実装を提供する。
//
// 通知の永続化とリアルタイム配信を行う。永続化が信頼できる唯一の記録であり、
// WebSocket経由の配信はベストエフォートで行われる。フィードの取得・既読管理・
// 削除のAPIと、他サービスから呼ばれる内部送信APIを持つ。
package notification
