// Package event はイベントサービスの内部実装を提供する。
//
// イベントの作成・承認・中止・削除を管理する。主催者が作成したイベントは
// 管理者の承認後に公開される。承認・中止・削除の各操作は関係者への通知を
// fire-and-forgetで送信する。
package event
