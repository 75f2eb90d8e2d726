package gateway

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gatewaydb "github.com/nao1215/eventhub/internal/gateway/db"
	"github.com/nao1215/eventhub/pkg/httpclient"
	"github.com/nao1215/eventhub/pkg/middleware"
	"github.com/nao1215/eventhub/pkg/notify"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// Server はAPI Gatewayサービスの HTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *gatewaydb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// serviceURLs はプロキシ先の内部サービスのURL。
	serviceURLs serviceURLConfig
	// eventClient はイベントサービスの内部APIクライアント。
	eventClient *httpclient.Client
	// registrationClient は参加登録サービスの内部APIクライアント。
	registrationClient *httpclient.Client
	// notificationClient は通知サービスの内部APIクライアント。
	notificationClient *httpclient.Client
	// notifyClient は通知サービスへのfire-and-forgetクライアント。
	notifyClient *notify.Client
}

// serviceURLConfig は内部サービスのURL設定。
type serviceURLConfig struct {
	Event        string
	Registration string
	Notification string
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/gateway.db?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	urls := serviceURLConfig{
		Event:        getEnvOr("EVENT_URL", "http://localhost:8082"),
		Registration: getEnvOr("REGISTRATION_URL", "http://localhost:8083"),
		Notification: getEnvOr("NOTIFICATION_URL", "http://localhost:8086"),
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:             router,
		port:               port,
		queries:            gatewaydb.New(sqlDB),
		db:                 sqlDB,
		jwtSecret:          jwtSecret,
		serviceURLs:        urls,
		eventClient:        httpclient.New(urls.Event),
		registrationClient: httpclient.New(urls.Registration),
		notificationClient: httpclient.New(urls.Notification),
		notifyClient:       notify.New(urls.Notification),
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
	// 認証エンドポイント（認証不要）
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", s.handleRegister())
		auth.POST("/login", s.handleLogin())
	}

	// 公開イベント一覧・詳細（認証不要のプロキシ）
	s.router.GET("/api/v1/events", s.handleProxy(s.serviceURLs.Event, "/api/v1/events"))
	s.router.GET("/api/v1/events/details/:id", s.handleProxyWithParam(s.serviceURLs.Event, "/api/v1/events/details/", "id"))
	s.router.GET("/api/v1/events/:id", s.handleProxyWithParam(s.serviceURLs.Event, "/api/v1/events/", "id"))

	// 認証必須のAPIエンドポイント
	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(s.jwtSecret))
	{
		// 自分のアカウント
		api.GET("/me", s.handleGetCurrentUser())
		api.PUT("/me", s.handleUpdateName())
		api.PUT("/me/password", s.handleUpdatePassword())
		api.DELETE("/me", s.handleDeleteAccount())

		// イベント（プロキシ）
		api.POST("/events", s.handleProxy(s.serviceURLs.Event, "/api/v1/events"))
		api.GET("/events/organizer", s.handleProxy(s.serviceURLs.Event, "/api/v1/events/organizer"))
		api.GET("/events/all", s.handleProxy(s.serviceURLs.Event, "/api/v1/events/all"))
		api.PUT("/events/approve/:id", s.handleProxyWithParam(s.serviceURLs.Event, "/api/v1/events/approve/", "id"))
		api.PUT("/events/cancel/:id", s.handleProxyWithParam(s.serviceURLs.Event, "/api/v1/events/cancel/", "id"))
		api.DELETE("/events/:id", s.handleProxyWithParam(s.serviceURLs.Event, "/api/v1/events/", "id"))

		// 参加登録（プロキシ）
		api.POST("/registrations", s.handleProxy(s.serviceURLs.Registration, "/api/v1/registrations"))
		api.GET("/registrations/my", s.handleProxy(s.serviceURLs.Registration, "/api/v1/registrations/my"))
		api.GET("/registrations/event/:event_id", s.handleProxyWithParam(s.serviceURLs.Registration, "/api/v1/registrations/event/", "event_id"))
		api.PUT("/registrations/:id/checkin", s.handleProxyWithParam(s.serviceURLs.Registration, "/api/v1/registrations/", "id", "/checkin"))

		// 通知（プロキシ）
		api.GET("/notifications/my", s.handleProxy(s.serviceURLs.Notification, "/api/v1/notifications/my"))
		api.GET("/notifications/unread-count", s.handleProxy(s.serviceURLs.Notification, "/api/v1/notifications/unread-count"))
		api.PUT("/notifications/read-all", s.handleProxy(s.serviceURLs.Notification, "/api/v1/notifications/read-all"))
		api.PUT("/notifications/:id/read", s.handleProxyWithParam(s.serviceURLs.Notification, "/api/v1/notifications/", "id", "/read"))
		api.POST("/notifications/delete-multiple", s.handleProxy(s.serviceURLs.Notification, "/api/v1/notifications/delete-multiple"))
		api.DELETE("/notifications/:id", s.handleProxyWithParam(s.serviceURLs.Notification, "/api/v1/notifications/", "id"))
		api.DELETE("/notifications", s.handleProxy(s.serviceURLs.Notification, "/api/v1/notifications"))

		// 管理者専用エンドポイント
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", s.handleListUsers())
			admin.PUT("/users/:id/role", s.handleUpdateRole())
			admin.DELETE("/users/:id", s.handleDeleteUser())
			admin.GET("/dashboard", s.handleDashboard())
		}
	}

	// 他サービス向けの内部API（信頼されたネットワーク内でのみ公開）
	internal := s.router.Group("/internal")
	{
		internal.GET("/users/:id", s.handleInternalGetUser())
		internal.GET("/users", s.handleInternalListIDsByRole())
		internal.GET("/stats", s.handleInternalStats())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// registerRequest はユーザー登録リクエストのJSON構造。
type registerRequest struct {
	// Name は表示名。
	Name string `json:"name" binding:"required"`
	// Email はメールアドレス。
	Email string `json:"email" binding:"required,email"`
	// Password は平文パスワード。
	Password string `json:"password" binding:"required,min=8"`
	// Role はロール（省略時はparticipant）。
	Role string `json:"role"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email" binding:"required"`
	// Password は平文パスワード。
	Password string `json:"password" binding:"required"`
}

// userResponse はユーザー情報をAPIレスポンス形式に変換する。
// パスワードハッシュは含めない。
func userResponse(user gatewaydb.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}

// handleRegister は新規ユーザーを登録するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "名前・メールアドレス・パスワード（8文字以上）は必須です"})
			return
		}

		role := req.Role
		if role == "" {
			role = middleware.RoleParticipant
		}
		// 管理者アカウントは自己登録できない
		if role != middleware.RoleParticipant && role != middleware.RoleOrganizer {
			c.JSON(http.StatusBadRequest, gin.H{"error": "指定されたロールは使用できません"})
			return
		}

		if _, err := s.queries.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "このメールアドレスは既に登録されています"})
			return
		} else if err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの確認に失敗しました"})
			log.Printf("ユーザー確認エラー: %v", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "パスワードの処理に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		user, err := s.queries.CreateUser(c.Request.Context(), gatewaydb.CreateUserParams{
			ID:           uuid.New().String(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         role,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの作成に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.ID, user.Email, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの生成に失敗しました"})
			log.Printf("JWT生成エラー: %v", err)
			return
		}

		resp := userResponse(user)
		resp["token"] = token
		c.JSON(http.StatusCreated, resp)
	}
}

// handleLogin はログインしてJWTトークンを発行するハンドラを返す。
// メールアドレス不明とパスワード不一致は同一のエラーを返し、
// アカウントの存在が推測できないようにする。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスとパスワードは必須です"})
			return
		}

		user, err := s.queries.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, user.ID, user.Email, user.Role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの生成に失敗しました"})
			log.Printf("JWT生成エラー: %v", err)
			return
		}

		resp := userResponse(user)
		resp["token"] = token
		c.JSON(http.StatusOK, resp)
	}
}

// handleGetCurrentUser は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.queries.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		c.JSON(http.StatusOK, userResponse(user))
	}
}

// updateNameRequest は表示名変更リクエストのJSON構造。
type updateNameRequest struct {
	// Name は新しい表示名。
	Name string `json:"name" binding:"required"`
}

// handleUpdateName は表示名を変更するハンドラを返す。
func (s *Server) handleUpdateName() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateNameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "名前は必須です"})
			return
		}

		userID := middleware.GetUserID(c)
		affected, err := s.queries.UpdateUserName(c.Request.Context(), gatewaydb.UpdateUserNameParams{
			Name: req.Name,
			ID:   userID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "名前の変更に失敗しました"})
			log.Printf("名前変更エラー: %v", err)
			return
		}
		if affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, userResponse(user))
	}
}

// updatePasswordRequest はパスワード変更リクエストのJSON構造。
type updatePasswordRequest struct {
	// CurrentPassword は現在のパスワード。
	CurrentPassword string `json:"current_password" binding:"required"`
	// NewPassword は新しいパスワード。
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// handleUpdatePassword はパスワードを変更するハンドラを返す。
// 現在のパスワードの確認に成功した場合のみ変更する。
func (s *Server) handleUpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "現在のパスワードと新しいパスワード（8文字以上）は必須です"})
			return
		}

		userID := middleware.GetUserID(c)
		user, err := s.queries.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "現在のパスワードが正しくありません"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "パスワードの処理に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		if _, err := s.queries.UpdateUserPassword(c.Request.Context(), gatewaydb.UpdateUserPasswordParams{
			PasswordHash: string(hash),
			ID:           userID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "パスワードの変更に失敗しました"})
			log.Printf("パスワード変更エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// deleteAccountRequest はアカウント削除リクエストのJSON構造。
type deleteAccountRequest struct {
	// Password は本人確認用のパスワード。
	Password string `json:"password" binding:"required"`
}

// handleDeleteAccount は自分のアカウントを削除するハンドラを返す。
// パスワードの確認に成功した場合のみ、参加登録・イベント・通知を
// 各サービスからカスケード削除する。
func (s *Server) handleDeleteAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "パスワードは必須です"})
			return
		}

		user, err := s.queries.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "パスワードが正しくありません"})
			return
		}

		if err := s.removeUser(c, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "アカウントの削除に失敗しました"})
			log.Printf("アカウント削除エラー: user=%s, error=%v", user.ID, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleListUsers は全ユーザーの一覧を返すハンドラを返す（管理者専用）。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.queries.ListUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー一覧の取得に失敗しました"})
			log.Printf("ユーザー一覧取得エラー: %v", err)
			return
		}

		response := make([]gin.H, 0, len(users))
		for _, user := range users {
			response = append(response, userResponse(user))
		}
		c.JSON(http.StatusOK, response)
	}
}

// updateRoleRequest はロール変更リクエストのJSON構造。
type updateRoleRequest struct {
	// Role は新しいロール。
	Role string `json:"role" binding:"required"`
}

// handleUpdateRole はユーザーのロールを変更するハンドラを返す（管理者専用）。
// 変更先はparticipantとorganizerのみ。管理者アカウントは変更できない。
func (s *Server) handleUpdateRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ロールは必須です"})
			return
		}
		if req.Role != middleware.RoleParticipant && req.Role != middleware.RoleOrganizer {
			c.JSON(http.StatusBadRequest, gin.H{"error": "指定されたロールは使用できません"})
			return
		}

		targetID := c.Param("id")
		target, err := s.queries.GetUserByID(c.Request.Context(), targetID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if target.Role == middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "管理者のロールは変更できません"})
			return
		}

		if _, err := s.queries.UpdateUserRole(c.Request.Context(), gatewaydb.UpdateUserRoleParams{
			Role: req.Role,
			ID:   targetID,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ロールの変更に失敗しました"})
			log.Printf("ロール変更エラー: %v", err)
			return
		}

		s.notifyClient.NotifyOne(c.Request.Context(), targetID,
			"Role Updated",
			fmt.Sprintf("あなたのロールが「%s」に変更されました。", req.Role),
			"", "")

		user, err := s.queries.GetUserByID(c.Request.Context(), targetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, userResponse(user))
	}
}

// handleDeleteUser は指定ユーザーを削除するハンドラを返す（管理者専用）。
// 管理者アカウントは削除できない。
func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := s.queries.GetUserByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if target.Role == middleware.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "管理者アカウントは削除できません"})
			return
		}

		// 接続中のセッションにはWebSocket経由で即時届く。保存された通知は
		// 直後のカスケード削除で消える
		s.notifyClient.NotifyOne(c.Request.Context(), target.ID,
			"Account Deleted",
			"あなたのアカウントは管理者によって削除されました。",
			"", "")

		if err := s.removeUser(c, target); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの削除に失敗しました"})
			log.Printf("ユーザー削除エラー: user=%s, error=%v", target.ID, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// removeUser はユーザーと関連データを削除する共通処理。
// 各サービスへのカスケード削除は失敗してもログに記録して続行し、
// 最後にユーザー行を削除する。
func (s *Server) removeUser(c *gin.Context, user gatewaydb.User) error {
	ctx := httpclient.WithUserID(c.Request.Context(), user.ID)

	if err := s.registrationClient.DeleteJSON(ctx, "/internal/registrations?user_id="+user.ID, nil); err != nil {
		log.Printf("参加登録のカスケード削除に失敗: user=%s, error=%v", user.ID, err)
	}

	if user.Role == middleware.RoleOrganizer {
		if err := s.eventClient.DeleteJSON(ctx, "/internal/organizers/"+user.ID+"/events", nil); err != nil {
			log.Printf("主催イベントのカスケード削除に失敗: user=%s, error=%v", user.ID, err)
		}
	}

	if err := s.notifyClient.DeleteUserNotifications(ctx, user.ID); err != nil {
		log.Printf("通知のカスケード削除に失敗: user=%s, error=%v", user.ID, err)
	}

	affected, err := s.queries.DeleteUser(c.Request.Context(), user.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// statsResponse は内部統計APIのレスポンスのJSON構造。
type statsResponse struct {
	// Count はレコード数。
	Count int64 `json:"count"`
}

// handleDashboard は各サービスの統計を集約して返すハンドラを返す（管理者専用）。
// 個々のサービスの障害はログに記録し、そのサービスの件数は0として返す。
func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.queries.CountUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "統計の取得に失敗しました"})
			log.Printf("ユーザー数取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_count":         users,
			"event_count":        s.fetchStats(c, s.eventClient, "event"),
			"registration_count": s.fetchStats(c, s.registrationClient, "registration"),
			"notification_count": s.fetchStats(c, s.notificationClient, "notification"),
		})
	}
}

// fetchStats は内部サービスからレコード数を取得する。失敗時は0を返す。
func (s *Server) fetchStats(c *gin.Context, client *httpclient.Client, service string) int64 {
	var stats statsResponse
	if err := client.GetJSON(c.Request.Context(), "/internal/stats", &stats); err != nil {
		log.Printf("統計の取得に失敗: service=%s, error=%v", service, err)
		return 0
	}
	return stats.Count
}

// handleInternalGetUser はユーザー情報を返す内部APIハンドラを返す。
// イベント・参加登録サービスが主催者・参加者の情報解決に使用する。
func (s *Server) handleInternalGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.queries.GetUserByID(c.Request.Context(), c.Param("id"))
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーの取得に失敗しました"})
			log.Printf("ユーザー取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// handleInternalListIDsByRole は指定ロールのユーザーID一覧を返す内部APIハンドラを返す。
// イベントサービスが管理者・参加者への通知のファンアウトに使用する。
func (s *Server) handleInternalListIDsByRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Query("role")
		if role == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roleパラメータは必須です"})
			return
		}

		ids, err := s.queries.ListUserIDsByRole(c.Request.Context(), role)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザーIDの取得に失敗しました"})
			log.Printf("ユーザーID取得エラー: %v", err)
			return
		}
		if ids == nil {
			ids = []string{}
		}

		c.JSON(http.StatusOK, gin.H{"ids": ids})
	}
}

// handleInternalStats は登録ユーザー数を返す内部APIハンドラを返す。
func (s *Server) handleInternalStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.queries.CountUsers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "統計の取得に失敗しました"})
			log.Printf("統計取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// handleProxy は指定されたサービスにリクエストをプロキシするハンドラを返す。
func (s *Server) handleProxy(baseURL, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyURL := baseURL + path
		if c.Request.URL.RawQuery != "" {
			proxyURL += "?" + c.Request.URL.RawQuery
		}
		s.doProxy(c, c.Request.Method, proxyURL)
	}
}

// handleProxyWithParam はURLパラメータを含むプロキシハンドラを返す。
func (s *Server) handleProxyWithParam(baseURL, pathPrefix, paramName string, pathSuffix ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyURL := baseURL + pathPrefix + c.Param(paramName)
		for _, suffix := range pathSuffix {
			proxyURL += suffix
		}
		if c.Request.URL.RawQuery != "" {
			proxyURL += "?" + c.Request.URL.RawQuery
		}
		s.doProxy(c, c.Request.Method, proxyURL)
	}
}

// doProxy はリクエストを内部サービスにプロキシする共通処理。
// JWTトークンとユーザーID・ロールのヘッダーを転送する。
func (s *Server) doProxy(c *gin.Context, method, url string) {
	req, err := http.NewRequestWithContext(c.Request.Context(), method, url, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "プロキシリクエストの作成に失敗しました"})
		return
	}

	// 元のリクエストヘッダーを転送
	req.Header.Set("Content-Type", c.GetHeader("Content-Type"))
	req.Header.Set("Authorization", c.GetHeader("Authorization"))
	req.Header.Set("X-User-ID", middleware.GetUserID(c))
	req.Header.Set("X-User-Role", middleware.GetRole(c))

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "内部サービスとの通信に失敗しました"})
		log.Printf("プロキシエラー: url=%s, error=%v", url, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "レスポンスの読み取りに失敗しました"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
