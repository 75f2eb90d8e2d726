package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nao1215/eventhub/pkg/middleware"
	"github.com/nao1215/eventhub/pkg/rtevent"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret"

// setupWSServer はテスト用のWebSocketサーバーを構築する。
func setupWSServer(t *testing.T) (*Registry, *httptest.Server) {
	t.Helper()

	registry := NewRegistry()
	handler := NewHandler(registry, testJWTSecret)

	router := gin.New()
	router.GET("/ws", handler.HandleWS())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return registry, srv
}

// issueTestToken はテスト用のJWTトークンを発行するヘルパー関数。
func issueTestToken(t *testing.T, userID string) string {
	t.Helper()

	token, err := middleware.GenerateJWT(testJWTSecret, userID, "test@example.com", middleware.RoleParticipant)
	if err != nil {
		t.Fatalf("トークンの生成に失敗: %v", err)
	}
	return token
}

// wsURL はhttptestサーバーのURLをWebSocketスキームに変換する。
func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

// readClientEnvelope はクライアント側接続からイベントフレームを1つ読み取る。
func readClientEnvelope(t *testing.T, client *websocket.Conn) rtevent.Envelope {
	t.Helper()

	if err := client.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("読み取り期限の設定に失敗: %v", err)
	}
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("フレームの読み取りに失敗: %v", err)
	}

	envelope, err := rtevent.Decode(data)
	if err != nil {
		t.Fatalf("フレームのデコードに失敗: %v", err)
	}
	return envelope
}

// TestHandleWSAuth はハンドシェイク時の認証のテスト。
func TestHandleWSAuth(t *testing.T) {
	t.Parallel()

	t.Run("トークンなしの接続は拒否される", func(t *testing.T) {
		t.Parallel()
		_, srv := setupWSServer(t)

		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws"), nil)
		if err == nil {
			t.Fatal("接続が拒否されませんでした")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %v, want %d", resp, http.StatusUnauthorized)
		}
	})

	t.Run("不正なトークンの接続は拒否される", func(t *testing.T) {
		t.Parallel()
		_, srv := setupWSServer(t)

		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token=invalid-token"), nil)
		if err == nil {
			t.Fatal("接続が拒否されませんでした")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("ステータスコード: got %v, want %d", resp, http.StatusUnauthorized)
		}
	})

	t.Run("有効なトークンで接続し確立イベントを受信する", func(t *testing.T) {
		t.Parallel()
		registry, srv := setupWSServer(t)

		token := issueTestToken(t, "user-1")
		client, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token="+token), nil)
		if err != nil {
			t.Fatalf("WebSocket接続に失敗: %v", err)
		}
		t.Cleanup(func() { client.Close() })

		envelope := readClientEnvelope(t, client)
		if envelope.Event != rtevent.TypeConnected {
			t.Errorf("event: got %s, want %s", envelope.Event, rtevent.TypeConnected)
		}

		var data rtevent.ConnectedData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			t.Fatalf("ペイロードのデコードに失敗: %v", err)
		}
		if !data.OK {
			t.Error("ok: got false, want true")
		}

		// 接続がチャンネルにバインドされたことを確認する
		if registry.Connections("user-1") != 1 {
			t.Errorf("接続数: got %d, want 1", registry.Connections("user-1"))
		}
	})

	t.Run("Authorizationヘッダーでも接続できる", func(t *testing.T) {
		t.Parallel()
		_, srv := setupWSServer(t)

		token := issueTestToken(t, "user-1")
		header := http.Header{"Authorization": []string{"Bearer " + token}}
		client, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws"), header)
		if err != nil {
			t.Fatalf("WebSocket接続に失敗: %v", err)
		}
		t.Cleanup(func() { client.Close() })

		envelope := readClientEnvelope(t, client)
		if envelope.Event != rtevent.TypeConnected {
			t.Errorf("event: got %s, want %s", envelope.Event, rtevent.TypeConnected)
		}
	})
}

// TestHandleWSDelivery は接続済みクライアントへの通知配信のテスト。
func TestHandleWSDelivery(t *testing.T) {
	t.Parallel()

	registry, srv := setupWSServer(t)

	token := issueTestToken(t, "user-1")
	client, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token="+token), nil)
	if err != nil {
		t.Fatalf("WebSocket接続に失敗: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	// 確立イベントを読み飛ばす
	envelope := readClientEnvelope(t, client)
	if envelope.Event != rtevent.TypeConnected {
		t.Fatalf("event: got %s, want %s", envelope.Event, rtevent.TypeConnected)
	}

	// レジストリ経由で通知を配信する
	payload := rtevent.NotificationData{
		ID:      "notif-1",
		User:    "user-1",
		Title:   "新着通知",
		Message: "リアルタイム配信のテスト",
	}
	registry.Send("user-1", rtevent.TypeNotificationNew, payload)

	envelope = readClientEnvelope(t, client)
	if envelope.Event != rtevent.TypeNotificationNew {
		t.Errorf("event: got %s, want %s", envelope.Event, rtevent.TypeNotificationNew)
	}

	var data rtevent.NotificationData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("ペイロードのデコードに失敗: %v", err)
	}
	if data.ID != "notif-1" {
		t.Errorf("id: got %s, want notif-1", data.ID)
	}
	if data.Title != "新着通知" {
		t.Errorf("title: got %s, want 新着通知", data.Title)
	}
}

// TestHandleWSDisconnect はクライアント切断時のアンバインドのテスト。
func TestHandleWSDisconnect(t *testing.T) {
	t.Parallel()

	registry, srv := setupWSServer(t)

	token := issueTestToken(t, "user-1")
	client, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws?token="+token), nil)
	if err != nil {
		t.Fatalf("WebSocket接続に失敗: %v", err)
	}

	readClientEnvelope(t, client)
	if registry.Connections("user-1") != 1 {
		t.Fatalf("接続数: got %d, want 1", registry.Connections("user-1"))
	}

	client.Close()

	// サーバー側の読み取りループがエラーを検知してアンバインドするまで待つ
	deadline := time.Now().Add(3 * time.Second)
	for registry.Connections("user-1") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("切断後も接続が残っています: got %d, want 0", registry.Connections("user-1"))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
