package event

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	eventdb "github.com/nao1215/eventhub/internal/event/db"
	"github.com/nao1215/eventhub/pkg/httpclient"
	"github.com/nao1215/eventhub/pkg/middleware"
	"github.com/nao1215/eventhub/pkg/notify"
	_ "modernc.org/sqlite"
)

// Server はイベントサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *eventdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// gatewayClient はGatewayの内部APIへのHTTPクライアント。
	gatewayClient *httpclient.Client
	// registrationClient は参加登録サービスの内部APIへのHTTPクライアント。
	registrationClient *httpclient.Client
	// notifyClient は通知サービスへのfire-and-forgetクライアント。
	notifyClient *notify.Client
}

// NewServer は新しいイベントサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/event.db?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:             router,
		port:               port,
		queries:            eventdb.New(sqlDB),
		db:                 sqlDB,
		gatewayClient:      httpclient.New(getEnvOr("GATEWAY_URL", "http://localhost:8080")),
		registrationClient: httpclient.New(getEnvOr("REGISTRATION_URL", "http://localhost:8083")),
		notifyClient:       notify.New(getEnvOr("NOTIFICATION_URL", "http://localhost:8086")),
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

	// 公開エンドポイント（認証不要）
	public := s.router.Group("/api/v1/events")
	{
		// 承認済みイベント一覧（開催日順）
		public.GET("", s.handleListApproved())
		// イベント詳細取得
		public.GET("/:id", s.handleGetByID())
		// イベント詳細と主催者情報の取得
		public.GET("/details/:id", s.handleDetails())
	}

	// 認証必須のエンドポイント
	api := s.router.Group("/api/v1/events")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		// イベント作成（主催者・管理者のみ）
		api.POST("", middleware.RequireOrganizer(), s.handleCreate())
		// 自分が主催するイベント一覧
		api.GET("/organizer", middleware.RequireOrganizer(), s.handleListByOrganizer())
		// イベント中止
		api.PUT("/cancel/:id", s.handleCancel())
		// イベント削除
		api.DELETE("/:id", s.handleDelete())
		// 全イベント一覧（管理者のみ）
		api.GET("/all", middleware.RequireAdmin(), s.handleListAll())
		// イベント承認・非公開化（管理者のみ）
		api.PUT("/approve/:id", middleware.RequireAdmin(), s.handleApprove())
	}

	// 内部API（他サービスから信頼済みネットワーク経由で呼び出される）
	internal := s.router.Group("/internal")
	{
		// イベント取得
		internal.GET("/events/:id", s.handleInternalGet())
		// 主催者の全イベント削除（アカウント削除時のカスケード）
		internal.DELETE("/organizers/:organizer_id/events", s.handleInternalDeleteOrganizerEvents())
		// イベント数の取得
		internal.GET("/stats", s.handleInternalStats())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "event"})
	})
}

// createEventRequest はイベント作成リクエストのJSON構造。
type createEventRequest struct {
	// Title はイベントのタイトル。
	Title string `json:"title" binding:"required"`
	// Description はイベントの説明。
	Description string `json:"description" binding:"required"`
	// Location は開催場所。
	Location string `json:"location"`
	// Poster はポスター画像のURL。
	Poster string `json:"poster"`
	// Date は開催日時（RFC3339形式）。
	Date string `json:"date" binding:"required"`
	// Category はイベントのカテゴリ。
	Category string `json:"category" binding:"required"`
	// IsPaid は有料イベントかどうか。
	IsPaid bool `json:"is_paid"`
	// Price は参加費。有料イベントの場合は必須。
	Price *float64 `json:"price"`
}

// cancelEventRequest はイベント中止リクエストのJSON構造。
type cancelEventRequest struct {
	// Reason は中止理由（任意）。
	Reason string `json:"reason"`
}

// approveEventRequest はイベント承認リクエストのJSON構造。
type approveEventRequest struct {
	// IsApproved は承認する場合true、非公開化する場合false。
	IsApproved *bool `json:"is_approved" binding:"required"`
}

// eventResponse はイベントのJSONレスポンス構造。
type eventResponse struct {
	// ID はイベントの一意識別子。
	ID string `json:"id"`
	// Title はイベントのタイトル。
	Title string `json:"title"`
	// Description はイベントの説明。
	Description string `json:"description"`
	// Location は開催場所。
	Location string `json:"location"`
	// Poster はポスター画像のURL。
	Poster string `json:"poster"`
	// Date は開催日時。
	Date string `json:"date"`
	// Category はイベントのカテゴリ。
	Category string `json:"category"`
	// OrganizerID は主催者のユーザーID。
	OrganizerID string `json:"organizer_id"`
	// IsApproved は承認状態。
	IsApproved bool `json:"is_approved"`
	// IsCancelled は中止状態。
	IsCancelled bool `json:"is_cancelled"`
	// CancelReason は中止理由。
	CancelReason string `json:"cancel_reason"`
	// IsPaid は有料イベントかどうか。
	IsPaid bool `json:"is_paid"`
	// Price は参加費。
	Price float64 `json:"price"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

// organizerInfo はGatewayから取得する主催者情報。
type organizerInfo struct {
	// ID はユーザーID。
	ID string `json:"id"`
	// Name はユーザー名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Role はユーザーのロール。
	Role string `json:"role"`
}

// userIDsResponse はGatewayのロール別ユーザーID一覧レスポンス。
type userIDsResponse struct {
	// IDs はユーザーIDのリスト。
	IDs []string `json:"ids"`
}

// registrantIDsResponse は参加登録サービスの登録者ID一覧レスポンス。
type registrantIDsResponse struct {
	// UserIDs は登録済みユーザーIDのリスト。
	UserIDs []string `json:"user_ids"`
}

// toEventResponse はDB行をJSONレスポンスに変換する。
func toEventResponse(e eventdb.Event) eventResponse {
	return eventResponse{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Location:     e.Location,
		Poster:       e.Poster,
		Date:         e.Date.Format(time.RFC3339),
		Category:     e.Category,
		OrganizerID:  e.OrganizerID,
		IsApproved:   e.IsApproved != 0,
		IsCancelled:  e.IsCancelled != 0,
		CancelReason: e.CancelReason,
		IsPaid:       e.IsPaid != 0,
		Price:        e.Price,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
}

// handleCreate はイベント作成を処理するハンドラを返す。
// 管理者が作成した場合は即時承認、主催者が作成した場合は未承認で作成し、
// 全管理者に承認待ちの通知を送信する。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req createEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "開催日時はRFC3339形式で指定してください"})
			return
		}

		// 有料イベントは参加費の指定が必須
		price := 0.0
		if req.IsPaid {
			if req.Price == nil || *req.Price < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "有料イベントには0以上の参加費を指定してください"})
				return
			}
			price = *req.Price
		}

		// 管理者が作成した場合は承認フローを省略する
		isApproved := int64(0)
		if middleware.GetRole(c) == middleware.RoleAdmin {
			isApproved = 1
		}

		isPaid := int64(0)
		if req.IsPaid {
			isPaid = 1
		}

		created, err := s.queries.CreateEvent(c.Request.Context(), eventdb.CreateEventParams{
			ID:          uuid.New().String(),
			Title:       req.Title,
			Description: req.Description,
			Location:    req.Location,
			Poster:      req.Poster,
			Date:        date,
			Category:    req.Category,
			OrganizerID: userID,
			IsApproved:  isApproved,
			IsPaid:      isPaid,
			Price:       price,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの作成に失敗しました"})
			log.Printf("イベント作成エラー: %v", err)
			return
		}

		// 未承認で作成された場合は全管理者に承認待ち通知を送信する
		if isApproved == 0 {
			ctx := httpclient.WithUserID(c.Request.Context(), userID)
			admins := s.usersByRole(c, "admin")
			s.notifyClient.NotifyMany(ctx, admins, "New Event Submitted",
				fmt.Sprintf("A new event %q awaits approval.", created.Title),
				"event", created.ID)
		}

		c.JSON(http.StatusCreated, toEventResponse(created))
	}
}

// handleListApproved は承認済みイベント一覧を返すハンドラを返す。
// 開催日の近い順に並べる。認証は不要。
func (s *Server) handleListApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.queries.ListApprovedEvents(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベント一覧の取得に失敗しました"})
			log.Printf("イベント一覧取得エラー: %v", err)
			return
		}

		responses := make([]eventResponse, 0, len(events))
		for _, e := range events {
			responses = append(responses, toEventResponse(e))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleGetByID はイベント詳細取得を処理するハンドラを返す。
func (s *Server) handleGetByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := s.queries.GetEvent(c.Request.Context(), c.Param("id"))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toEventResponse(e))
	}
}

// handleDetails はイベント詳細と主催者情報を返すハンドラを返す。
// 主催者情報はGatewayの内部APIから解決する。解決に失敗した場合は
// イベント情報のみ返す。
func (s *Server) handleDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := s.queries.GetEvent(c.Request.Context(), c.Param("id"))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		var organizer *gin.H
		var info organizerInfo
		if err := s.gatewayClient.GetJSON(c.Request.Context(), "/internal/users/"+e.OrganizerID, &info); err != nil {
			log.Printf("主催者情報の取得に失敗: organizer=%s, error=%v", e.OrganizerID, err)
		} else {
			organizer = &gin.H{"name": info.Name, "email": info.Email}
		}

		c.JSON(http.StatusOK, gin.H{
			"event":     toEventResponse(e),
			"organizer": organizer,
		})
	}
}

// handleListByOrganizer は自分が主催するイベント一覧を返すハンドラを返す。
// 作成の新しい順に並べる。
func (s *Server) handleListByOrganizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		events, err := s.queries.ListEventsByOrganizer(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベント一覧の取得に失敗しました"})
			log.Printf("主催イベント一覧取得エラー: %v", err)
			return
		}

		responses := make([]eventResponse, 0, len(events))
		for _, e := range events {
			responses = append(responses, toEventResponse(e))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleCancel はイベント中止を処理するハンドラを返す。
// 主催者本人または管理者のみ実行できる。中止後、全登録者と主催者に通知する。
func (s *Server) handleCancel() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		eventID := c.Param("id")
		e, err := s.queries.GetEvent(c.Request.Context(), eventID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		if e.OrganizerID != userID && middleware.GetRole(c) != middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "このイベントへのアクセス権がありません"})
			return
		}

		var req cancelEventRequest
		// ボディは任意。空でも中止できる
		_ = c.ShouldBindJSON(&req)

		if _, err := s.queries.CancelEvent(c.Request.Context(), eventdb.CancelEventParams{
			CancelReason: req.Reason,
			ID:           eventID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの中止に失敗しました"})
			log.Printf("イベント中止エラー: %v", err)
			return
		}

		// 全登録者と主催者に中止を通知する
		ctx := httpclient.WithUserID(c.Request.Context(), userID)
		registrants := s.registrantIDs(c, eventID)
		s.notifyClient.NotifyMany(ctx, registrants, "Event Cancelled",
			fmt.Sprintf("The event %q has been cancelled.", e.Title), "event", eventID)
		s.notifyClient.NotifyOne(ctx, e.OrganizerID, "Event Cancelled",
			fmt.Sprintf("Your event %q has been cancelled.", e.Title), "event", eventID)

		updated, err := s.queries.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後のイベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toEventResponse(updated))
	}
}

// handleDelete はイベント削除を処理するハンドラを返す。
// 主催者本人または管理者のみ実行できる。登録者への通知と
// 参加登録の削除を行ってからイベントを削除する。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		eventID := c.Param("id")
		e, err := s.queries.GetEvent(c.Request.Context(), eventID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		if e.OrganizerID != userID && middleware.GetRole(c) != middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "このイベントへのアクセス権がありません"})
			return
		}

		if err := s.removeEvent(c, e); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの削除に失敗しました"})
			log.Printf("イベント削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "イベントを削除しました"})
	}
}

// handleListAll は全イベント一覧を返すハンドラを返す。管理者のみ。
func (s *Server) handleListAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.queries.ListAllEvents(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベント一覧の取得に失敗しました"})
			log.Printf("全イベント一覧取得エラー: %v", err)
			return
		}

		responses := make([]eventResponse, 0, len(events))
		for _, e := range events {
			responses = append(responses, toEventResponse(e))
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleApprove はイベントの承認・非公開化を処理するハンドラを返す。管理者のみ。
// 承認時は主催者への通知に加えて、全参加者ロールのユーザーに公開通知を送信する。
func (s *Server) handleApprove() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req approveEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		eventID := c.Param("id")
		e, err := s.queries.GetEvent(c.Request.Context(), eventID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		isApproved := int64(0)
		if *req.IsApproved {
			isApproved = 1
		}

		if _, err := s.queries.SetEventApproval(c.Request.Context(), eventdb.SetEventApprovalParams{
			IsApproved: isApproved,
			ID:         eventID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの承認処理に失敗しました"})
			log.Printf("イベント承認エラー: %v", err)
			return
		}

		ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))
		if *req.IsApproved {
			s.notifyClient.NotifyOne(ctx, e.OrganizerID, "Event Approved",
				fmt.Sprintf("Your event %q has been approved.", e.Title), "event", eventID)

			// 公開されたイベントを全参加者に知らせる
			participants := s.usersByRole(c, "participant")
			s.notifyClient.NotifyMany(ctx, participants, "New Event Published",
				fmt.Sprintf("A new event %q is now open for registration.", e.Title),
				"event", eventID)
		} else {
			s.notifyClient.NotifyOne(ctx, e.OrganizerID, "Event Unlisted",
				fmt.Sprintf("Your event %q has been unlisted.", e.Title), "event", eventID)
		}

		updated, err := s.queries.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後のイベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toEventResponse(updated))
	}
}

// handleInternalGet はイベント取得の内部APIハンドラを返す。
func (s *Server) handleInternalGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := s.queries.GetEvent(c.Request.Context(), c.Param("id"))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベントの取得に失敗しました"})
			log.Printf("イベント取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toEventResponse(e))
	}
}

// handleInternalDeleteOrganizerEvents は主催者の全イベントを削除する内部APIハンドラを返す。
// アカウント削除時のカスケード処理として呼び出される。イベントごとに
// 登録者への通知と参加登録の削除を行う。
func (s *Server) handleInternalDeleteOrganizerEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		organizerID := c.Param("organizer_id")
		events, err := s.queries.ListEventsByOrganizer(c.Request.Context(), organizerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベント一覧の取得に失敗しました"})
			log.Printf("主催イベント一覧取得エラー: %v", err)
			return
		}

		var deleted int64
		for _, e := range events {
			if err := s.removeEvent(c, e); err != nil {
				log.Printf("カスケード削除エラー: event=%s, error=%v", e.ID, err)
				continue
			}
			deleted++
		}

		c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
	}
}

// handleInternalStats はイベント数を返す内部APIハンドラを返す。
func (s *Server) handleInternalStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.queries.CountEvents(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "イベント数の取得に失敗しました"})
			log.Printf("イベント数取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// removeEvent はイベント削除の共通処理。
// 登録者と主催者に削除を通知し、参加登録を削除してからイベント本体を削除する。
// 通知と参加登録削除の失敗はログに記録するだけで、イベント削除は続行する。
func (s *Server) removeEvent(c *gin.Context, e eventdb.Event) error {
	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

	registrants := s.registrantIDs(c, e.ID)
	s.notifyClient.NotifyMany(ctx, registrants, "Event Deleted",
		fmt.Sprintf("The event %q has been removed.", e.Title), "event", e.ID)
	s.notifyClient.NotifyOne(ctx, e.OrganizerID, "Event Deleted",
		fmt.Sprintf("Your event %q has been removed.", e.Title), "event", e.ID)

	if err := s.registrationClient.DeleteJSON(ctx, "/internal/registrations?event_id="+e.ID, nil); err != nil {
		log.Printf("参加登録の削除に失敗: event=%s, error=%v", e.ID, err)
	}

	if _, err := s.queries.DeleteEvent(c.Request.Context(), e.ID); err != nil {
		return fmt.Errorf("イベントの削除に失敗: %w", err)
	}
	return nil
}

// registrantIDs はイベントの登録者のユーザーID一覧を参加登録サービスから取得する。
// 取得に失敗した場合はログに記録して空のリストを返す。
func (s *Server) registrantIDs(c *gin.Context, eventID string) []string {
	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

	var resp registrantIDsResponse
	if err := s.registrationClient.GetJSON(ctx, "/internal/registrations?event_id="+eventID, &resp); err != nil {
		log.Printf("登録者一覧の取得に失敗: event=%s, error=%v", eventID, err)
		return nil
	}
	return resp.UserIDs
}

// usersByRole は指定ロールのユーザーID一覧をGatewayから取得する。
// 取得に失敗した場合はログに記録して空のリストを返す。
func (s *Server) usersByRole(c *gin.Context, role string) []string {
	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

	var resp userIDsResponse
	if err := s.gatewayClient.GetJSON(ctx, "/internal/users?role="+role, &resp); err != nil {
		log.Printf("ユーザー一覧の取得に失敗: role=%s, error=%v", role, err)
		return nil
	}
	return resp.IDs
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
