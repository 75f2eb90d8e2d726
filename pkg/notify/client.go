// Package notify は通知サービスの内部APIを呼び出すクライアントを提供する。
// 通知配信は業務処理の付随的な副作用であるため、このクライアントは
// fire-and-forgetの契約を持つ。配信失敗はログに記録するだけで
// 呼び出し元には決して伝播しない。イベント作成や参加登録などの
// 業務処理が、通知の失敗を理由に失敗してはならない。
package notify

import (
	"context"
	"log"

	"github.com/nao1215/eventhub/pkg/httpclient"
)

// Client は通知サービスへのfire-and-forgetクライアント。
type Client struct {
	// httpClient は通知サービスへのHTTPクライアント。
	httpClient *httpclient.Client
}

// New は新しい通知クライアントを生成する。
// baseURLには通知サービスのベースURL（例: "http://notification:8086"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: httpclient.New(baseURL),
	}
}

// notifyRequest は単一ユーザーへの通知リクエストのJSON構造。
type notifyRequest struct {
	// UserID は通知先のユーザーID。
	UserID string `json:"user_id"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// LinkType は関連エンティティの種類（任意）。
	LinkType string `json:"link_type"`
	// LinkID は関連エンティティの識別子（任意）。
	LinkID string `json:"link_id"`
}

// notifyManyRequest は複数ユーザーへの通知リクエストのJSON構造。
type notifyManyRequest struct {
	// UserIDs は通知先のユーザーIDのリスト。
	UserIDs []string `json:"user_ids"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Message は通知メッセージ。
	Message string `json:"message"`
	// LinkType は関連エンティティの種類（任意）。
	LinkType string `json:"link_type"`
	// LinkID は関連エンティティの識別子（任意）。
	LinkID string `json:"link_id"`
}

// NotifyOne は単一ユーザーに通知を送信する。
// 失敗してもログに記録するだけでエラーは返さない。
func (c *Client) NotifyOne(ctx context.Context, userID, title, message, linkType, linkID string) {
	req := notifyRequest{
		UserID:   userID,
		Title:    title,
		Message:  message,
		LinkType: linkType,
		LinkID:   linkID,
	}
	if err := c.httpClient.PostJSON(ctx, "/internal/notify", req, nil); err != nil {
		log.Printf("通知の送信に失敗: user=%s, title=%s, error=%v", userID, title, err)
	}
}

// NotifyMany は複数ユーザーに同内容の通知を送信する。
// 宛先が空の場合は何もしない。失敗してもログに記録するだけでエラーは返さない。
func (c *Client) NotifyMany(ctx context.Context, userIDs []string, title, message, linkType, linkID string) {
	if len(userIDs) == 0 {
		return
	}

	req := notifyManyRequest{
		UserIDs:  userIDs,
		Title:    title,
		Message:  message,
		LinkType: linkType,
		LinkID:   linkID,
	}
	if err := c.httpClient.PostJSON(ctx, "/internal/notify-many", req, nil); err != nil {
		log.Printf("通知の一括送信に失敗: recipients=%d, title=%s, error=%v", len(userIDs), title, err)
	}
}

// DeleteUserNotifications は指定ユーザーの全通知を削除する。
// アカウント削除時のカスケード処理で使用する。こちらは削除の成否が
// 呼び出し元の関心事であるためエラーを返す。
func (c *Client) DeleteUserNotifications(ctx context.Context, userID string) error {
	return c.httpClient.DeleteJSON(ctx, "/internal/users/"+userID+"/notifications", nil)
}
