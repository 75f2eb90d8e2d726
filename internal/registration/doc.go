// Package registration は参加登録サービスの内部実装を提供する。
//
// イベントへの参加登録とQRコードによるチェックインを管理する。
// 登録・チェックインの各操作は関係者への通知をfire-and-forgetで送信する。
// 同一QRコードの再スキャンは10分間のクールダウンで拒否される。
package registration
