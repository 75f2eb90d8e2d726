// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// ユーザー登録・ログイン・JWT発行と、各内部サービスへのリバースプロキシを担う。
// アカウント削除時は参加登録・イベント・通知の各サービスへカスケード削除を行う。
package gateway
