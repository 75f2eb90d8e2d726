package registration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	registrationdb "github.com/nao1215/eventhub/internal/registration/db"
	"github.com/nao1215/eventhub/pkg/httpclient"
	"github.com/nao1215/eventhub/pkg/notify"
	_ "modernc.org/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordedNotify は通知モックが受信したリクエストの記録。
type recordedNotify struct {
	// Path はリクエストパス。
	Path string
	// Body はリクエストボディ。
	Body map[string]any
}

// notifyRecorder は通知モックへのリクエストを記録する。
type notifyRecorder struct {
	mu       sync.Mutex
	requests []recordedNotify
}

// record はリクエストを記録する。
func (n *notifyRecorder) record(r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, recordedNotify{Path: r.URL.Path, Body: body})
}

// findByTitle は指定タイトルの通知記録を返す。
func (n *notifyRecorder) findByTitle(title string) *recordedNotify {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.requests {
		if n.requests[i].Body["title"] == title {
			return &n.requests[i]
		}
	}
	return nil
}

// setupTestServer はテスト用の参加登録サーバーをインメモリSQLiteで構築する。
// イベント・Gateway・通知サービスのモックも生成する。
func setupTestServer(t *testing.T) (*Server, *gin.Engine, *notifyRecorder) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := initSchema(sqlDB); err != nil {
		t.Fatalf("スキーマ初期化に失敗: %v", err)
	}

	// イベントサービスのモック。固定のイベント群を返す
	eventSvc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/internal/events/event-approved":
			fmt.Fprint(w, `{"id":"event-approved","title":"公開イベント","organizer_id":"organizer-1","is_approved":true,"is_cancelled":false}`)
		case "/internal/events/event-unapproved":
			fmt.Fprint(w, `{"id":"event-unapproved","title":"未承認イベント","organizer_id":"organizer-1","is_approved":false,"is_cancelled":false}`)
		case "/internal/events/event-cancelled":
			fmt.Fprint(w, `{"id":"event-cancelled","title":"中止イベント","organizer_id":"organizer-1","is_approved":true,"is_cancelled":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"not found"}`)
		}
	}))
	t.Cleanup(eventSvc.Close)

	// Gatewayのモック。ユーザー情報を返す
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"user-1","name":"参加者","email":"user@example.com","role":"participant"}`)
	}))
	t.Cleanup(gateway.Close)

	recorder := &notifyRecorder{}
	notification := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder.record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"created":true}`)
	}))
	t.Cleanup(notification.Close)

	router := gin.New()
	s := &Server{
		router:        router,
		port:          "0",
		queries:       registrationdb.New(sqlDB),
		db:            sqlDB,
		eventClient:   httpclient.New(eventSvc.URL),
		gatewayClient: httpclient.New(gateway.URL),
		notifyClient:  notify.New(notification.URL),
	}

	// JWTミドルウェアの代わりにテスト用のユーザーID・ロール設定ミドルウェアを使用する
	api := router.Group("/api/v1/registrations")
	api.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		if role := c.GetHeader("X-User-Role"); role != "" {
			c.Set("role", role)
		}
		c.Next()
	})
	{
		api.POST("", s.handleCreate())
		api.GET("/my", s.handleListMine())
		api.GET("/event/:event_id", s.handleListByEvent())
		api.PUT("/:id/checkin", s.handleCheckIn())
	}

	internal := router.Group("/internal")
	{
		internal.GET("/registrations", s.handleInternalList())
		internal.DELETE("/registrations", s.handleInternalDelete())
		internal.GET("/stats", s.handleInternalStats())
	}

	return s, router, recorder
}

// doRequest はテスト用のHTTPリクエストを実行し、レスポンスを返すヘルパー関数。
func doRequest(router *gin.Engine, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをmapにデコードするヘルパー関数。
func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// parseJSONArray はレスポンスボディをスライスにデコードするヘルパー関数。
func parseJSONArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var result []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON配列のデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// registerForEvent は参加登録APIを呼び出し、作成された登録のIDを返すヘルパー関数。
func registerForEvent(t *testing.T, router *gin.Engine, userID, eventID string) string {
	t.Helper()

	body := map[string]string{"event_id": eventID}
	w := doRequest(router, http.MethodPost, "/api/v1/registrations", userID, "participant", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("参加登録に失敗: status=%d, body=%s", w.Code, w.Body.String())
	}

	result := parseJSON(t, w)
	id, ok := result["id"].(string)
	if !ok || id == "" {
		t.Fatal("登録結果にidが含まれていません")
	}
	return id
}

// TestHandleCreateRegistration は参加登録ハンドラのテスト。
func TestHandleCreateRegistration(t *testing.T) {
	t.Parallel()

	t.Run("承認済みイベントに登録できQRコードが発行される", func(t *testing.T) {
		t.Parallel()
		_, router, recorder := setupTestServer(t)

		body := map[string]string{"event_id": "event-approved"}
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "user-1", "participant", body)

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
		}

		result := parseJSON(t, w)
		if result["user_id"] != "user-1" {
			t.Errorf("user_id: got %v, want user-1", result["user_id"])
		}
		if result["checked_in"] != false {
			t.Errorf("checked_in: got %v, want false", result["checked_in"])
		}

		// QRペイロードが登録情報を含むJSONであることを確認する
		var payload qrPayload
		if err := json.Unmarshal([]byte(result["qr_code"].(string)), &payload); err != nil {
			t.Fatalf("QRペイロードのデコードに失敗: %v", err)
		}
		if payload.EventID != "event-approved" {
			t.Errorf("qr.event_id: got %v, want event-approved", payload.EventID)
		}
		if payload.UserID != "user-1" {
			t.Errorf("qr.user_id: got %v, want user-1", payload.UserID)
		}
		if payload.RegistrationID != result["id"] {
			t.Errorf("qr.registration_id: got %v, want %v", payload.RegistrationID, result["id"])
		}

		// 主催者と参加者本人への通知
		if recorder.findByTitle("New Registration") == nil {
			t.Error("主催者への通知が送信されていません")
		}
		if recorder.findByTitle("Registration Successful") == nil {
			t.Error("参加者本人への通知が送信されていません")
		}
	})

	t.Run("存在しないイベントの場合はNotFound", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		body := map[string]string{"event_id": "nonexistent"}
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "user-1", "participant", body)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("未承認イベントの場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		body := map[string]string{"event_id": "event-unapproved"}
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "user-1", "participant", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("中止イベントの場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		body := map[string]string{"event_id": "event-cancelled"}
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "user-1", "participant", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("重複登録の場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		registerForEvent(t, router, "user-1", "event-approved")

		body := map[string]string{"event_id": "event-approved"}
		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "user-1", "participant", body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("event_idが未指定の場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(router, http.MethodPost, "/api/v1/registrations", "user-1", "participant", map[string]string{})

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestHandleListMine は自分の参加登録一覧のテスト。
func TestHandleListMine(t *testing.T) {
	t.Parallel()

	_, router, _ := setupTestServer(t)

	registerForEvent(t, router, "user-1", "event-approved")

	w := doRequest(router, http.MethodGet, "/api/v1/registrations/my", "user-1", "participant", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}

	result := parseJSONArray(t, w)
	if len(result) != 1 {
		t.Fatalf("配列の長さ: got %d, want 1", len(result))
	}

	// イベント情報が埋め込まれている
	event, ok := result[0]["event"].(map[string]any)
	if !ok {
		t.Fatalf("eventがオブジェクトではありません: %v", result[0]["event"])
	}
	if event["title"] != "公開イベント" {
		t.Errorf("event.title: got %v, want 公開イベント", event["title"])
	}

	// 他ユーザーの一覧には含まれない
	w2 := doRequest(router, http.MethodGet, "/api/v1/registrations/my", "user-2", "participant", nil)
	other := parseJSONArray(t, w2)
	if len(other) != 0 {
		t.Errorf("他ユーザーの登録数: got %d, want 0", len(other))
	}
}

// TestHandleListByEvent はイベントの参加者一覧のテスト。
func TestHandleListByEvent(t *testing.T) {
	t.Parallel()

	t.Run("主催者は参加者一覧を取得できる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		registerForEvent(t, router, "user-1", "event-approved")
		registerForEvent(t, router, "user-2", "event-approved")

		w := doRequest(router, http.MethodGet, "/api/v1/registrations/event/event-approved", "organizer-1", "organizer", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		result := parseJSONArray(t, w)
		if len(result) != 2 {
			t.Fatalf("配列の長さ: got %d, want 2", len(result))
		}
		// Gatewayから解決した参加者情報が含まれる
		if result[0]["name"] != "参加者" {
			t.Errorf("name: got %v, want 参加者", result[0]["name"])
		}
	})

	t.Run("主催者以外はForbidden", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(router, http.MethodGet, "/api/v1/registrations/event/event-approved", "organizer-2", "organizer", nil)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
		}
	})
}

// TestHandleCheckIn はチェックインハンドラのテスト。
func TestHandleCheckIn(t *testing.T) {
	t.Parallel()

	t.Run("主催者がチェックインでき双方に通知される", func(t *testing.T) {
		t.Parallel()
		_, router, recorder := setupTestServer(t)

		regID := registerForEvent(t, router, "user-1", "event-approved")

		w := doRequest(router, http.MethodPut, "/api/v1/registrations/"+regID+"/checkin", "organizer-1", "organizer", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
		}

		result := parseJSON(t, w)
		if result["checked_in"] != true {
			t.Errorf("checked_in: got %v, want true", result["checked_in"])
		}
		if result["last_scanned_at"] == nil {
			t.Error("last_scanned_atが設定されていません")
		}

		// 参加者と主催者への通知
		if recorder.findByTitle("Check-In Successful") == nil {
			t.Error("参加者への通知が送信されていません")
		}
		if recorder.findByTitle("Participant Checked In") == nil {
			t.Error("主催者への通知が送信されていません")
		}
	})

	t.Run("クールダウン期間内の再スキャンはTooManyRequests", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		regID := registerForEvent(t, router, "user-1", "event-approved")

		w := doRequest(router, http.MethodPut, "/api/v1/registrations/"+regID+"/checkin", "organizer-1", "organizer", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("1回目のチェックインに失敗: status=%d", w.Code)
		}

		w2 := doRequest(router, http.MethodPut, "/api/v1/registrations/"+regID+"/checkin", "organizer-1", "organizer", nil)
		if w2.Code != http.StatusTooManyRequests {
			t.Errorf("ステータスコード: got %d, want %d", w2.Code, http.StatusTooManyRequests)
		}
	})

	t.Run("クールダウン経過後は再スキャンできる", func(t *testing.T) {
		t.Parallel()
		s, router, _ := setupTestServer(t)

		regID := registerForEvent(t, router, "user-1", "event-approved")

		w := doRequest(router, http.MethodPut, "/api/v1/registrations/"+regID+"/checkin", "organizer-1", "organizer", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("1回目のチェックインに失敗: status=%d", w.Code)
		}

		// 最終スキャン日時をクールダウン期間より前に巻き戻す
		if _, err := s.db.Exec("UPDATE registrations SET last_scanned_at = datetime('now', '-11 minutes') WHERE id = ?", regID); err != nil {
			t.Fatalf("最終スキャン日時の更新に失敗: %v", err)
		}

		w2 := doRequest(router, http.MethodPut, "/api/v1/registrations/"+regID+"/checkin", "organizer-1", "organizer", nil)
		if w2.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w2.Code, http.StatusOK)
		}
	})

	t.Run("主催者以外はForbidden", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		regID := registerForEvent(t, router, "user-1", "event-approved")

		w := doRequest(router, http.MethodPut, "/api/v1/registrations/"+regID+"/checkin", "user-1", "participant", nil)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("存在しない参加登録の場合はNotFound", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(router, http.MethodPut, "/api/v1/registrations/nonexistent/checkin", "organizer-1", "organizer", nil)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestHandleInternalRegistrationEndpoints は内部APIのテスト。
func TestHandleInternalRegistrationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("イベントの登録者ID一覧を取得できる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		registerForEvent(t, router, "user-1", "event-approved")
		registerForEvent(t, router, "user-2", "event-approved")

		w := doRequest(router, http.MethodGet, "/internal/registrations?event_id=event-approved", "", "", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}

		result := parseJSON(t, w)
		userIDs, ok := result["user_ids"].([]any)
		if !ok {
			t.Fatalf("user_idsが配列ではありません: %v", result["user_ids"])
		}
		if len(userIDs) != 2 {
			t.Errorf("user_idsの長さ: got %d, want 2", len(userIDs))
		}
	})

	t.Run("イベント単位で参加登録を削除できる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		registerForEvent(t, router, "user-1", "event-approved")
		registerForEvent(t, router, "user-2", "event-approved")

		w := doRequest(router, http.MethodDelete, "/internal/registrations?event_id=event-approved", "", "", nil)

		result := parseJSON(t, w)
		if result["deletedCount"] != float64(2) {
			t.Errorf("deletedCount: got %v, want 2", result["deletedCount"])
		}
	})

	t.Run("ユーザー単位で参加登録を削除できる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		registerForEvent(t, router, "user-1", "event-approved")

		w := doRequest(router, http.MethodDelete, "/internal/registrations?user_id=user-1", "", "", nil)

		result := parseJSON(t, w)
		if result["deletedCount"] != float64(1) {
			t.Errorf("deletedCount: got %v, want 1", result["deletedCount"])
		}
	})

	t.Run("event_idもuser_idも未指定の場合はBadRequest", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		w := doRequest(router, http.MethodDelete, "/internal/registrations", "", "", nil)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("参加登録数を取得できる", func(t *testing.T) {
		t.Parallel()
		_, router, _ := setupTestServer(t)

		registerForEvent(t, router, "user-1", "event-approved")

		w := doRequest(router, http.MethodGet, "/internal/stats", "", "", nil)

		result := parseJSON(t, w)
		if result["count"] != float64(1) {
			t.Errorf("count: got %v, want 1", result["count"])
		}
	})
}
