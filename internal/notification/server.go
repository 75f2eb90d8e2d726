package notification

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	notificationdb "github.com/nao1215/eventhub/internal/notification/db"
	"github.com/nao1215/eventhub/internal/realtime"
	"github.com/nao1215/eventhub/pkg/middleware"
	"github.com/nao1215/eventhub/pkg/rtevent"
	_ "modernc.org/sqlite"
)

// legacyFeedLimit はページネーション指定なしの旧形式フィードの上限件数。
const legacyFeedLimit = 100

// defaultPageSize はページネーション指定時のデフォルトページサイズ。
const defaultPageSize = 20

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *notificationdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// registry はライブWebSocket接続のレジストリ。
	registry *realtime.Registry
	// dispatcher は通知の永続化とベストエフォート配信を行う。
	dispatcher *Dispatcher
}

// NewServer は新しい通知サーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/notification.db?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	queries := notificationdb.New(sqlDB)
	registry := realtime.NewRegistry()

	s := &Server{
		router:     router,
		port:       port,
		queries:    queries,
		db:         sqlDB,
		registry:   registry,
		dispatcher: NewDispatcher(queries, registry),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	// リアルタイム接続。ハンドシェイク時にトークンを検証し、
	// 認証失敗時はチャンネルへのバインド前に拒否する。
	wsHandler := realtime.NewHandler(s.registry, jwtSecret)
	s.router.GET("/ws", wsHandler.HandleWS())

	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		notifications := api.Group("/notifications")
		{
			// フィード取得（ページネーション・フィルタ対応）
			notifications.GET("/my", s.handleFeed())
			// 未読件数取得
			notifications.GET("/unread-count", s.handleUnreadCount())
			// 通知を既読にする
			notifications.PUT("/:id/read", s.handleMarkOneRead())
			// 全通知を既読にする
			notifications.PUT("/read-all", s.handleMarkAllRead())
			// 通知を1件削除する
			notifications.DELETE("/:id", s.handleDeleteOne())
			// 指定された複数の通知を削除する
			notifications.POST("/delete-multiple", s.handleDeleteMultiple())
			// 全通知を削除する（readOnly=trueで既読のみ）
			notifications.DELETE("", s.handleClearAll())
		}
	}

	// 内部API（他サービスから信頼済みネットワーク経由で呼び出される）
	internal := s.router.Group("/internal")
	{
		// 単一ユーザーへの通知送信
		internal.POST("/notify", s.handleNotify())
		// 複数ユーザーへの通知送信
		internal.POST("/notify-many", s.handleNotifyMany())
		// ユーザーの全通知削除（アカウント削除時のカスケード）
		internal.DELETE("/users/:user_id/notifications", s.handleDeleteUserNotifications())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification"})
	})
}

// paginationResponse はページネーションメタデータのJSONレスポンス構造。
// フィールド名は既存クライアントとの互換性のためcamelCaseで固定する。
type paginationResponse struct {
	// Page は現在のページ番号（1始まり）。
	Page int64 `json:"page"`
	// Limit は1ページあたりの件数。
	Limit int64 `json:"limit"`
	// Total はフィルタ適用後の総件数。
	Total int64 `json:"total"`
	// TotalPages は総ページ数（ceil(total/limit)）。
	TotalPages int64 `json:"totalPages"`
	// HasMore はこのページ以降にレコードが残っているかどうか。
	HasMore bool `json:"hasMore"`
}

// feedQuery はフィード取得のクエリパラメータを解釈した結果。
type feedQuery struct {
	// usePagination はページネーション形式のレスポンスを返すかどうか。
	// page/limitのいずれかが指定された場合にtrueになる。
	usePagination bool
	// page は要求されたページ番号。
	page int64
	// limit は要求されたページサイズ。
	limit int64
	// listParams はDBクエリ用のパラメータ。
	listParams notificationdb.ListNotificationsParams
	// countParams は総件数クエリ用のパラメータ。
	countParams notificationdb.CountNotificationsParams
}

// parseFeedQuery はフィード取得のクエリパラメータを解釈する。
// page/limitのどちらも指定されない場合は旧形式（フラット配列・上限100件）、
// いずれかが指定された場合はページネーション形式となる。
func parseFeedQuery(c *gin.Context, userID string) feedQuery {
	pageStr := c.Query("page")
	limitStr := c.Query("limit")
	usePagination := pageStr != "" || limitStr != ""

	page, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 {
		if usePagination {
			limit = defaultPageSize
		} else {
			limit = legacyFeedLimit
		}
	}

	// 既読状態フィルタ（read=true/false）
	var filterRead, isRead int64
	if readStr := c.Query("read"); readStr != "" {
		filterRead = 1
		if readStr == "true" {
			isRead = 1
		}
	}

	linkType := c.Query("linkType")

	return feedQuery{
		usePagination: usePagination,
		page:          page,
		limit:         limit,
		listParams: notificationdb.ListNotificationsParams{
			UserID:     userID,
			FilterRead: filterRead,
			IsRead:     isRead,
			LinkType:   linkType,
			Limit:      limit,
			Offset:     (page - 1) * limit,
		},
		countParams: notificationdb.CountNotificationsParams{
			UserID:     userID,
			FilterRead: filterRead,
			IsRead:     isRead,
			LinkType:   linkType,
		},
	}
}

// handleFeed は認証済みユーザーの通知フィードを返すハンドラ。
// ページネーションパラメータなしの場合は旧形式のフラット配列（新着順・上限100件）、
// ありの場合はページネーションメタデータ付きのオブジェクトを返す。
func (s *Server) handleFeed() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		query := parseFeedQuery(c, userID)

		notifications, err := s.queries.ListNotifications(c.Request.Context(), query.listParams)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			log.Printf("通知一覧取得エラー: %v", err)
			return
		}

		responses := make([]rtevent.NotificationData, 0, len(notifications))
		for _, n := range notifications {
			responses = append(responses, toNotificationData(n))
		}

		// 旧形式: フラット配列を返す（既存クライアントとの後方互換）
		if !query.usePagination {
			c.JSON(http.StatusOK, responses)
			return
		}

		total, err := s.queries.CountNotifications(c.Request.Context(), query.countParams)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知件数の取得に失敗しました"})
			log.Printf("通知件数取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"notifications": responses,
			"pagination": paginationResponse{
				Page:       query.page,
				Limit:      query.limit,
				Total:      total,
				TotalPages: int64(math.Ceil(float64(total) / float64(query.limit))),
				HasMore:    query.listParams.Offset+int64(len(responses)) < total,
			},
		})
	}
}

// handleUnreadCount は認証済みユーザーの未読通知件数を返すハンドラ。
func (s *Server) handleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		count, err := s.queries.CountUnreadNotifications(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読件数の取得に失敗しました"})
			log.Printf("未読件数取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// handleMarkOneRead は指定された通知を既読にするハンドラ。
// 所有者スコープはクエリ自体に含まれるため、他ユーザーの通知はNotFoundになる。
func (s *Server) handleMarkOneRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		notificationID := c.Param("id")
		rows, err := s.queries.MarkNotificationRead(c.Request.Context(), notificationdb.MarkNotificationReadParams{
			ID:     notificationID,
			UserID: userID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の既読処理に失敗しました"})
			log.Printf("通知既読処理エラー: %v", err)
			return
		}
		if rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
			return
		}

		n, err := s.queries.GetNotification(c.Request.Context(), notificationdb.GetNotificationParams{
			ID:     notificationID,
			UserID: userID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後の通知の取得に失敗しました"})
			log.Printf("通知取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "notification": toNotificationData(n)})
	}
}

// handleMarkAllRead は認証済みユーザーの全通知を既読にするハンドラ。
// 未読のレコードのみ遷移するため冪等であり、2回目の呼び出しはmodifiedCount=0になる。
func (s *Server) handleMarkAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		rows, err := s.queries.MarkAllNotificationsRead(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "全通知の既読処理に失敗しました"})
			log.Printf("全通知既読処理エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "modifiedCount": rows})
	}
}

// handleDeleteOne は指定された通知を削除するハンドラ。
func (s *Server) handleDeleteOne() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		rows, err := s.queries.DeleteNotification(c.Request.Context(), notificationdb.DeleteNotificationParams{
			ID:     c.Param("id"),
			UserID: userID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の削除に失敗しました"})
			log.Printf("通知削除エラー: %v", err)
			return
		}
		if rows == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// deleteMultipleRequest は複数通知削除リクエストのJSON構造。
type deleteMultipleRequest struct {
	// IDs は削除対象の通知IDのリスト。
	IDs []string `json:"ids"`
}

// handleDeleteMultiple は指定された複数の通知を削除するハンドラ。
// 呼び出し元が所有する通知のみ削除し、他ユーザーの通知や存在しないIDは
// 黙ってスキップする（エラーにはしない）。deletedCountは実際に削除した件数。
func (s *Server) handleDeleteMultiple() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req deleteMultipleRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "通知IDのリストが不正です"})
			return
		}

		var deleted int64
		for _, id := range req.IDs {
			rows, err := s.queries.DeleteNotification(c.Request.Context(), notificationdb.DeleteNotificationParams{
				ID:     id,
				UserID: userID,
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の削除に失敗しました"})
				log.Printf("複数通知削除エラー: id=%s, error=%v", id, err)
				return
			}
			deleted += rows
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": deleted})
	}
}

// handleClearAll は認証済みユーザーの通知を一括削除するハンドラ。
// readOnly=trueクエリパラメータが指定された場合は既読の通知のみ削除する。
func (s *Server) handleClearAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var rows int64
		var err error
		if c.Query("readOnly") == "true" {
			rows, err = s.queries.DeleteReadNotifications(c.Request.Context(), userID)
		} else {
			rows, err = s.queries.DeleteAllNotifications(c.Request.Context(), userID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の一括削除に失敗しました"})
			log.Printf("通知一括削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": rows})
	}
}

// notifyRequest は単一ユーザーへの通知送信リクエストのJSON構造。
type notifyRequest struct {
	// UserID は通知先のユーザーID。
	UserID string `json:"user_id" binding:"required"`
	// Title は通知のタイトル。
	Title string `json:"title" binding:"required"`
	// Message は通知メッセージ。
	Message string `json:"message" binding:"required"`
	// LinkType は関連エンティティの種類（任意）。
	LinkType string `json:"link_type"`
	// LinkID は関連エンティティの識別子（任意）。
	LinkID string `json:"link_id"`
}

// handleNotify は単一ユーザーへ通知を送信するハンドラ。
// 内部API（他サービスから呼び出される）。ディスパッチャが永続化に
// 失敗した場合でもエラーステータスは返さない。配信は付随的な副作用であり、
// 呼び出し元の業務処理を失敗させないため。
func (s *Server) handleNotify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req notifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		data := s.dispatcher.NotifyOne(c.Request.Context(), req.UserID, req.Title, req.Message, req.LinkType, req.LinkID)
		if data == nil {
			c.JSON(http.StatusOK, gin.H{"created": false})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"created": true, "notification": data})
	}
}

// notifyManyRequest は複数ユーザーへの通知送信リクエストのJSON構造。
type notifyManyRequest struct {
	// UserIDs は通知先のユーザーIDのリスト。
	UserIDs []string `json:"user_ids" binding:"required"`
	// Title は通知のタイトル。
	Title string `json:"title" binding:"required"`
	// Message は通知メッセージ。
	Message string `json:"message" binding:"required"`
	// LinkType は関連エンティティの種類（任意）。
	LinkType string `json:"link_type"`
	// LinkID は関連エンティティの識別子（任意）。
	LinkID string `json:"link_id"`
}

// handleNotifyMany は複数ユーザーへ通知を送信するハンドラ。
// 内部API（他サービスから呼び出される）。宛先ごとにレコードを独立して
// 作成するため、一部の失敗が他の宛先への配信を妨げない。
func (s *Server) handleNotifyMany() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req notifyManyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		created := s.dispatcher.NotifyMany(c.Request.Context(), req.UserIDs, req.Title, req.Message, req.LinkType, req.LinkID)
		c.JSON(http.StatusCreated, gin.H{"created": len(created), "notifications": created})
	}
}

// handleDeleteUserNotifications は指定ユーザーの全通知を削除するハンドラ。
// 内部API。アカウント削除時のカスケード処理として呼び出される。
func (s *Server) handleDeleteUserNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.queries.DeleteAllNotifications(c.Request.Context(), c.Param("user_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の削除に失敗しました"})
			log.Printf("ユーザー通知削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deletedCount": rows})
	}
}
