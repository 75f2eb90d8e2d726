package realtime

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nao1215/eventhub/pkg/rtevent"
)

// Conn は1本のWebSocket接続と所属ユーザーの対応を表す。
type Conn struct {
	// ws は下層のWebSocket接続。
	ws *websocket.Conn
	// userID は接続が束縛されているユーザーのID。
	userID string
	// writeMu は書き込みの直列化用ミューテックス。
	// gorilla/websocketは並行書き込みをサポートしないため必須。
	writeMu sync.Mutex
}

// write はエンコード済みフレームを接続に書き込む。
func (c *Conn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Registry は認証済みユーザーとライブ接続の対応を管理する。
// 1ユーザーが複数の接続を同時に持つことを許容し、配信はその全接続に行う。
// バインド・アンバインド・配信は複数のゴルーチンから並行に呼ばれるため、
// マップはRWMutexで保護する。
type Registry struct {
	// mu はchannelsマップを保護するミューテックス。
	mu sync.RWMutex
	// channels はユーザーIDからライブ接続の集合へのマップ。
	channels map[string]map[*Conn]struct{}
}

// NewRegistry は新しい接続レジストリを生成する。
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]map[*Conn]struct{}),
	}
}

// Bind は認証済みユーザーのチャンネルに接続を追加する。
func (r *Registry) Bind(userID string, ws *websocket.Conn) *Conn {
	c := &Conn{ws: ws, userID: userID}

	r.mu.Lock()
	if _, ok := r.channels[userID]; !ok {
		r.channels[userID] = make(map[*Conn]struct{})
	}
	r.channels[userID][c] = struct{}{}
	total := len(r.channels[userID])
	r.mu.Unlock()

	log.Printf("WebSocket接続: user=%s (接続数=%d)", userID, total)
	return c
}

// Unbind はチャンネルから接続を取り除き、接続を閉じる。
// 他コンポーネントへの通知は行わない。
func (r *Registry) Unbind(c *Conn) {
	r.mu.Lock()
	if conns, ok := r.channels[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(r.channels, c.userID)
		}
	}
	r.mu.Unlock()

	_ = c.ws.Close()
	log.Printf("WebSocket切断: user=%s", c.userID)
}

// Send は指定ユーザーの全ライブ接続にイベントを配信する。
// ユーザーがオフライン（接続ゼロ）の場合は何もしない。これはエラーではない。
// 書き込みに失敗した接続はチャンネルから取り除く。
func (r *Registry) Send(userID string, event rtevent.Type, payload any) {
	data, err := rtevent.Encode(event, payload)
	if err != nil {
		log.Printf("配信フレームのエンコードに失敗: user=%s, event=%s, error=%v", userID, event, err)
		return
	}

	// 書き込み中のロック保持を避けるため、接続の一覧をコピーしてから配信する
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.channels[userID]))
	for c := range r.channels[userID] {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			log.Printf("WebSocket配信に失敗: user=%s, error=%v", userID, err)
			r.Unbind(c)
		}
	}
}

// Connections は指定ユーザーの現在のライブ接続数を返す。
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[userID])
}
