package registration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	registrationdb "github.com/nao1215/eventhub/internal/registration/db"
	"github.com/nao1215/eventhub/pkg/httpclient"
	"github.com/nao1215/eventhub/pkg/middleware"
	"github.com/nao1215/eventhub/pkg/notify"
	_ "modernc.org/sqlite"
)

// rescanCooldown は同一QRコードの再スキャンを拒否する期間。
const rescanCooldown = 10 * time.Minute

// Server は参加登録サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *registrationdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// eventClient はイベントサービスの内部APIへのHTTPクライアント。
	eventClient *httpclient.Client
	// gatewayClient はGatewayの内部APIへのHTTPクライアント。
	gatewayClient *httpclient.Client
	// notifyClient は通知サービスへのfire-and-forgetクライアント。
	notifyClient *notify.Client
}

// NewServer は新しい参加登録サーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/registration.db?_journal_mode=WAL&_busy_timeout=5000")
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
		router:        router,
		port:          port,
		queries:       registrationdb.New(sqlDB),
		db:            sqlDB,
		eventClient:   httpclient.New(getEnvOr("EVENT_URL", "http://localhost:8082")),
		gatewayClient: httpclient.New(getEnvOr("GATEWAY_URL", "http://localhost:8080")),
		notifyClient:  notify.New(getEnvOr("NOTIFICATION_URL", "http://localhost:8086")),
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

	api := s.router.Group("/api/v1/registrations")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		// イベントへの参加登録
		api.POST("", s.handleCreate())
		// 自分の参加登録一覧（イベント情報付き）
		api.GET("/my", s.handleListMine())
		// イベントの参加者一覧（主催者のみ）
		api.GET("/event/:event_id", s.handleListByEvent())
		// QRコードによるチェックイン（主催者のみ）
		api.PUT("/:id/checkin", s.handleCheckIn())
	}

	// 内部API（他サービスから信頼済みネットワーク経由で呼び出される）
	internal := s.router.Group("/internal")
	{
		// イベントの登録者ID一覧
		internal.GET("/registrations", s.handleInternalList())
		// イベント単位・ユーザー単位の参加登録削除（カスケード）
		internal.DELETE("/registrations", s.handleInternalDelete())
		// 参加登録数の取得
		internal.GET("/stats", s.handleInternalStats())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "registration"})
	})
}

// createRegistrationRequest は参加登録リクエストのJSON構造。
type createRegistrationRequest struct {
	// EventID は登録対象のイベントID。
	EventID string `json:"event_id" binding:"required"`
}

// qrPayload はチェックイン用QRコードに埋め込まれるJSONペイロード。
type qrPayload struct {
	// RegistrationID は参加登録のID。
	RegistrationID string `json:"registration_id"`
	// EventID は対象イベントのID。
	EventID string `json:"event_id"`
	// UserID は参加者のユーザーID。
	UserID string `json:"user_id"`
}

// eventRecord はイベントサービスの内部APIから取得するイベント情報。
type eventRecord struct {
	// ID はイベントの一意識別子。
	ID string `json:"id"`
	// Title はイベントのタイトル。
	Title string `json:"title"`
	// Description はイベントの説明。
	Description string `json:"description"`
	// Location は開催場所。
	Location string `json:"location"`
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
}

// userRecord はGatewayの内部APIから取得するユーザー情報。
type userRecord struct {
	// ID はユーザーID。
	ID string `json:"id"`
	// Name はユーザー名。
	Name string `json:"name"`
	// Email はメールアドレス。
	Email string `json:"email"`
}

// registrationResponse は参加登録のJSONレスポンス構造。
type registrationResponse struct {
	// ID は参加登録の一意識別子。
	ID string `json:"id"`
	// UserID は参加者のユーザーID。
	UserID string `json:"user_id"`
	// EventID は対象イベントのID。
	EventID string `json:"event_id"`
	// CheckedIn はチェックイン済みかどうか。
	CheckedIn bool `json:"checked_in"`
	// QrCode はチェックイン用QRコードのペイロード。
	QrCode string `json:"qr_code"`
	// LastScannedAt は最終スキャン日時。未スキャンはnull。
	LastScannedAt *string `json:"last_scanned_at"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `json:"updated_at"`
}

// toRegistrationResponse はDB行をJSONレスポンスに変換する。
func toRegistrationResponse(r registrationdb.Registration) registrationResponse {
	var lastScanned *string
	if r.LastScannedAt.Valid {
		formatted := r.LastScannedAt.Time.Format(time.RFC3339)
		lastScanned = &formatted
	}
	return registrationResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		EventID:       r.EventID,
		CheckedIn:     r.CheckedIn != 0,
		QrCode:        r.QrCode,
		LastScannedAt: lastScanned,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}

// fetchEvent はイベントサービスの内部APIからイベントを取得する。
func (s *Server) fetchEvent(c *gin.Context, eventID string) (eventRecord, error) {
	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))

	var ev eventRecord
	if err := s.eventClient.GetJSON(ctx, "/internal/events/"+eventID, &ev); err != nil {
		return eventRecord{}, fmt.Errorf("イベントの取得に失敗: %w", err)
	}
	return ev, nil
}

// handleCreate は参加登録を処理するハンドラを返す。
// 承認済みかつ中止されていないイベントにのみ登録できる。登録成功時は
// チェックイン用QRコードのペイロードを発行し、主催者と参加者本人に通知する。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		var req createRegistrationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		ev, err := s.fetchEvent(c, req.EventID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			log.Printf("イベント取得エラー: event=%s, error=%v", req.EventID, err)
			return
		}
		if !ev.IsApproved {
			c.JSON(http.StatusBadRequest, gin.H{"error": "未承認のイベントには登録できません"})
			return
		}
		if ev.IsCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "中止されたイベントには登録できません"})
			return
		}

		// 重複登録のチェック
		if _, err := s.queries.GetRegistrationByUserAndEvent(c.Request.Context(), registrationdb.GetRegistrationByUserAndEventParams{
			UserID:  userID,
			EventID: req.EventID,
		}); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "このイベントには登録済みです"})
			return
		} else if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加登録の確認に失敗しました"})
			log.Printf("参加登録確認エラー: %v", err)
			return
		}

		registrationID := uuid.New().String()
		qrBytes, err := json.Marshal(qrPayload{
			RegistrationID: registrationID,
			EventID:        req.EventID,
			UserID:         userID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "QRコードの生成に失敗しました"})
			log.Printf("QRペイロード生成エラー: %v", err)
			return
		}

		created, err := s.queries.CreateRegistration(c.Request.Context(), registrationdb.CreateRegistrationParams{
			ID:      registrationID,
			UserID:  userID,
			EventID: req.EventID,
			QrCode:  string(qrBytes),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加登録に失敗しました"})
			log.Printf("参加登録エラー: %v", err)
			return
		}

		// 主催者と参加者本人に登録を通知する
		ctx := httpclient.WithUserID(c.Request.Context(), userID)
		s.notifyClient.NotifyOne(ctx, ev.OrganizerID, "New Registration",
			fmt.Sprintf("A participant registered for your event %q.", ev.Title),
			"event", ev.ID)
		s.notifyClient.NotifyOne(ctx, userID, "Registration Successful",
			fmt.Sprintf("You are registered for %q.", ev.Title), "event", ev.ID)

		c.JSON(http.StatusCreated, toRegistrationResponse(created))
	}
}

// handleListMine は自分の参加登録一覧を返すハンドラを返す。
// 各登録にイベントサービスから取得したイベント情報を埋め込む。
// イベント情報の取得に失敗した場合はeventをnullにして返す。
func (s *Server) handleListMine() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		registrations, err := s.queries.ListRegistrationsByUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加登録一覧の取得に失敗しました"})
			log.Printf("参加登録一覧取得エラー: %v", err)
			return
		}

		responses := make([]gin.H, 0, len(registrations))
		for _, r := range registrations {
			var event *eventRecord
			if ev, err := s.fetchEvent(c, r.EventID); err != nil {
				log.Printf("イベント情報の解決に失敗: event=%s, error=%v", r.EventID, err)
			} else {
				event = &ev
			}
			responses = append(responses, gin.H{
				"registration": toRegistrationResponse(r),
				"event":        event,
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleListByEvent はイベントの参加者一覧を返すハンドラを返す。
// イベントの主催者本人または管理者のみ取得できる。参加者の名前と
// メールアドレスはGatewayの内部APIから解決する。
func (s *Server) handleListByEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		eventID := c.Param("event_id")
		ev, err := s.fetchEvent(c, eventID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			log.Printf("イベント取得エラー: event=%s, error=%v", eventID, err)
			return
		}

		if ev.OrganizerID != userID && middleware.GetRole(c) != middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "このイベントへのアクセス権がありません"})
			return
		}

		registrations, err := s.queries.ListRegistrationsByEvent(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加者一覧の取得に失敗しました"})
			log.Printf("参加者一覧取得エラー: %v", err)
			return
		}

		ctx := httpclient.WithUserID(c.Request.Context(), userID)
		responses := make([]gin.H, 0, len(registrations))
		for _, r := range registrations {
			var user userRecord
			if err := s.gatewayClient.GetJSON(ctx, "/internal/users/"+r.UserID, &user); err != nil {
				log.Printf("参加者情報の解決に失敗: user=%s, error=%v", r.UserID, err)
			}
			responses = append(responses, gin.H{
				"id":         r.ID,
				"user_id":    r.UserID,
				"name":       user.Name,
				"email":      user.Email,
				"checked_in": r.CheckedIn != 0,
				"created_at": r.CreatedAt.Format(time.RFC3339),
			})
		}

		c.JSON(http.StatusOK, responses)
	}
}

// handleCheckIn はQRコードによるチェックインを処理するハンドラを返す。
// イベントの主催者本人または管理者のみ実行できる。同一QRコードの
// 再スキャンはクールダウン期間内であればTooManyRequestsで拒否する。
func (s *Server) handleCheckIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
			return
		}

		registrationID := c.Param("id")
		r, err := s.queries.GetRegistration(c.Request.Context(), registrationID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "参加登録が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加登録の取得に失敗しました"})
			log.Printf("参加登録取得エラー: %v", err)
			return
		}

		ev, err := s.fetchEvent(c, r.EventID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "イベントが見つかりません"})
			log.Printf("イベント取得エラー: event=%s, error=%v", r.EventID, err)
			return
		}

		if ev.OrganizerID != userID && middleware.GetRole(c) != middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "このイベントへのアクセス権がありません"})
			return
		}

		// クールダウン期間内の再スキャンを拒否する
		if r.LastScannedAt.Valid && time.Since(r.LastScannedAt.Time) < rescanCooldown {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "このQRコードは最近スキャンされています"})
			return
		}

		if _, err := s.queries.CheckInRegistration(c.Request.Context(), registrationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "チェックインに失敗しました"})
			log.Printf("チェックインエラー: %v", err)
			return
		}

		// 参加者と主催者にチェックインを通知する
		ctx := httpclient.WithUserID(c.Request.Context(), userID)
		s.notifyClient.NotifyOne(ctx, r.UserID, "Check-In Successful",
			fmt.Sprintf("You are checked in to %q.", ev.Title), "event", ev.ID)
		s.notifyClient.NotifyOne(ctx, ev.OrganizerID, "Participant Checked In",
			fmt.Sprintf("A participant checked in to %q.", ev.Title), "event", ev.ID)

		updated, err := s.queries.GetRegistration(c.Request.Context(), registrationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "更新後の参加登録の取得に失敗しました"})
			log.Printf("参加登録取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toRegistrationResponse(updated))
	}
}

// handleInternalList はイベントの登録者ID一覧を返す内部APIハンドラを返す。
func (s *Server) handleInternalList() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Query("event_id")
		if eventID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_idが必要です"})
			return
		}

		registrations, err := s.queries.ListRegistrationsByEvent(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "登録者一覧の取得に失敗しました"})
			log.Printf("登録者一覧取得エラー: %v", err)
			return
		}

		userIDs := make([]string, 0, len(registrations))
		for _, r := range registrations {
			userIDs = append(userIDs, r.UserID)
		}

		c.JSON(http.StatusOK, gin.H{"user_ids": userIDs})
	}
}

// handleInternalDelete は参加登録を一括削除する内部APIハンドラを返す。
// event_id指定でイベント削除時のカスケード、user_id指定で
// アカウント削除時のカスケードとして呼び出される。
func (s *Server) handleInternalDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := c.Query("event_id")
		userID := c.Query("user_id")

		var rows int64
		var err error
		switch {
		case eventID != "":
			rows, err = s.queries.DeleteRegistrationsByEvent(c.Request.Context(), eventID)
		case userID != "":
			rows, err = s.queries.DeleteRegistrationsByUser(c.Request.Context(), userID)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_idまたはuser_idが必要です"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加登録の削除に失敗しました"})
			log.Printf("参加登録削除エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deletedCount": rows})
	}
}

// handleInternalStats は参加登録数を返す内部APIハンドラを返す。
func (s *Server) handleInternalStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.queries.CountRegistrations(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "参加登録数の取得に失敗しました"})
			log.Printf("参加登録数取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
