// Package realtime はリアルタイム通知配信のWebSocket層を提供する。
// 認証済みユーザーとライブ接続の対応を管理し、ユーザー単位の
// ベストエフォート配信を行う。永続化は通知サービスの責務であり、
// この層は配信の成否を保証しない。
package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nao1215/eventhub/pkg/middleware"
	"github.com/nao1215/eventhub/pkg/rtevent"
)

// 接続維持のタイミング定数。
const (
	// readDeadline はクライアントからの応答を待つ最大時間。
	readDeadline = 60 * time.Second
	// pingInterval はサーバーからのping送信間隔。readDeadlineより短くする。
	pingInterval = 20 * time.Second
	// readLimit はクライアントからの受信メッセージの最大バイト数。
	readLimit = 512
)

// upgrader はHTTP接続をWebSocketにアップグレードする。
// オリジン検証はgatewayのCORS設定に委ねる。
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Handler はWebSocketハンドシェイクと接続ライフサイクルを処理する。
type Handler struct {
	// registry は接続のバインド先レジストリ。
	registry *Registry
	// jwtSecret はJWT検証用の秘密鍵。
	jwtSecret string
}

// NewHandler は新しいWebSocketハンドラを生成する。
func NewHandler(registry *Registry, jwtSecret string) *Handler {
	return &Handler{
		registry:  registry,
		jwtSecret: jwtSecret,
	}
}

// HandleWS はWebSocket接続を処理するハンドラを返す。
// ベアラ資格情報（tokenクエリパラメータまたはAuthorizationヘッダー）を検証し、
// 失敗した場合はチャンネルへのバインド前に接続を拒否する。
// 検証失敗の理由によらず同一の応答を返し、情報漏洩を避ける。
func (h *Handler) HandleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}

		claims, err := middleware.VerifyJWT(h.jwtSecret, token)
		if err != nil || claims.UserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "認証に失敗しました"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgradeが失敗した場合はupgraderが応答を書き込み済み
			return
		}

		conn := h.registry.Bind(claims.UserID, ws)
		defer h.registry.Unbind(conn)

		// 接続確立の応答イベントを送信する
		if data, err := rtevent.Encode(rtevent.TypeConnected, rtevent.ConnectedData{OK: true}); err == nil {
			_ = conn.write(data)
		}

		// pingループで接続の生存を確認する
		stop := make(chan struct{})
		defer close(stop)
		go h.pingLoop(conn, stop)

		// 読み取りループ。クライアントからのメッセージは読み捨て、
		// pongで読み取り期限を更新する。エラーで抜けたらアンバインドする。
		ws.SetReadLimit(readLimit)
		_ = ws.SetReadDeadline(time.Now().Add(readDeadline))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(readDeadline))
		})

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// pingLoop は一定間隔でpingフレームを送信する。
// 接続が閉じられるとwriteエラーになりループを抜ける。
func (h *Handler) pingLoop(conn *Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			conn.writeMu.Lock()
			err := conn.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			conn.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// extractToken はリクエストからベアラ資格情報を取り出す。
// tokenクエリパラメータを優先し、なければAuthorizationヘッダーを参照する。
func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	if header := c.GetHeader("Authorization"); header != "" {
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			return token
		}
	}
	return ""
}
