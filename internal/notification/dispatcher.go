package notification

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	notificationdb "github.com/nao1215/eventhub/internal/notification/db"
	"github.com/nao1215/eventhub/internal/realtime"
	"github.com/nao1215/eventhub/pkg/rtevent"
)

// Dispatcher は通知の永続化とリアルタイム配信を行う。
//
// 配信アルゴリズムは常に「永続化してから配信」の順序を守る。永続化が
// 信頼できる唯一の記録であり、WebSocket配信はベストエフォートに過ぎない。
// 永続化・配信のどちらが失敗しても呼び出し元にエラーは伝播しない。
// 通知は業務処理の付随的な副作用であり、通知の失敗が業務処理を
// 失敗させてはならないため。
type Dispatcher struct {
	// queries は通知テーブルへのクエリ実行オブジェクト。
	queries *notificationdb.Queries
	// registry はライブ接続のレジストリ。コンストラクタで注入される。
	registry *realtime.Registry
}

// NewDispatcher は新しい通知ディスパッチャを生成する。
// registryは明示的に注入する。グローバルな共有状態は持たない。
func NewDispatcher(queries *notificationdb.Queries, registry *realtime.Registry) *Dispatcher {
	return &Dispatcher{
		queries:  queries,
		registry: registry,
	}
}

// NotifyOne は単一ユーザーへ通知を送る。
// レコードを永続化し、成功した場合のみ宛先のライブ接続へ配信を試みる。
// 永続化に失敗した場合はログに記録してnilを返す。エラーは返さない。
// 宛先がオフラインでも永続化されたレコードをそのまま返す。
func (d *Dispatcher) NotifyOne(ctx context.Context, userID, title, message, linkType, linkID string) *rtevent.NotificationData {
	n, err := d.queries.CreateNotification(ctx, notificationdb.CreateNotificationParams{
		ID:       uuid.New().String(),
		UserID:   userID,
		Title:    title,
		Message:  message,
		LinkType: linkType,
		LinkID:   linkID,
	})
	if err != nil {
		log.Printf("通知の作成に失敗: user=%s, title=%s, error=%v", userID, title, err)
		return nil
	}

	data := toNotificationData(n)
	d.push(userID, data)
	return &data
}

// NotifyMany は複数ユーザーへ同内容の通知を送る。
// 各宛先のレコード作成は独立しており、1件の失敗が他の宛先を妨げない。
// 配信は作成に成功したレコードに対してのみ試みる。作成に成功した
// レコードの一覧を返す（失敗があった場合は宛先数より少なくなる）。
func (d *Dispatcher) NotifyMany(ctx context.Context, userIDs []string, title, message, linkType, linkID string) []rtevent.NotificationData {
	created := make([]rtevent.NotificationData, 0, len(userIDs))
	for _, userID := range userIDs {
		n, err := d.queries.CreateNotification(ctx, notificationdb.CreateNotificationParams{
			ID:       uuid.New().String(),
			UserID:   userID,
			Title:    title,
			Message:  message,
			LinkType: linkType,
			LinkID:   linkID,
		})
		if err != nil {
			log.Printf("一括通知の作成に失敗: user=%s, title=%s, error=%v", userID, title, err)
			continue
		}

		data := toNotificationData(n)
		d.push(userID, data)
		created = append(created, data)
	}
	return created
}

// push は宛先のライブ接続へ通知イベントを配信する。
// レジストリが未設定の場合や宛先がオフラインの場合は何もしない。
func (d *Dispatcher) push(userID string, data rtevent.NotificationData) {
	if d.registry == nil {
		return
	}
	d.registry.Send(userID, rtevent.TypeNotificationNew, data)
}

// toNotificationData はDB行を配信・応答用の表現に変換する。
func toNotificationData(n notificationdb.Notification) rtevent.NotificationData {
	return rtevent.NotificationData{
		ID:        n.ID,
		User:      n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.IsRead != 0,
		LinkType:  n.LinkType,
		LinkID:    n.LinkID,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
		UpdatedAt: n.UpdatedAt.Format(time.RFC3339),
	}
}
