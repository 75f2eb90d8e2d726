// Package httpclient はサービス間通信用のHTTPクライアントを提供する。
// JSONリクエストの送受信とコンテキスト経由のユーザーID伝播を行う。
package httpclient
