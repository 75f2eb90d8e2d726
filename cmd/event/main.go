// イベントサービスのエントリポイント。
// イベントの作成・承認・中止・削除を担当し、
// 各操作に応じて関係者への通知を送信する。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/nao1215/eventhub/internal/event"
)

func main() {
	// .envが無ければ環境変数のみ使用する
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	server, err := event.NewServer(port)
	if err != nil {
		log.Fatalf("イベントサーバーの初期化に失敗: %v", err)
	}

	log.Printf("イベントサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("イベントサービスの起動に失敗: %v", err)
	}
}
