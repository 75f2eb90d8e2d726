// 通知サービスのエントリポイント。
// 通知の保存・既読管理と、WebSocketによるリアルタイム配信を担当する。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/nao1215/eventhub/internal/notification"
)

func main() {
	// .envが無ければ環境変数のみ使用する
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8086"
	}

	server, err := notification.NewServer(port)
	if err != nil {
		log.Fatalf("通知サーバーの初期化に失敗: %v", err)
	}

	log.Printf("通知サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("通知サービスの起動に失敗: %v", err)
	}
}
