// 参加登録サービスのエントリポイント。
// イベントへの参加登録とQRコードによるチェックインを担当する。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/nao1215/eventhub/internal/registration"
)

func main() {
	// .envが無ければ環境変数のみ使用する
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8083"
	}

	server, err := registration.NewServer(port)
	if err != nil {
		log.Fatalf("参加登録サーバーの初期化に失敗: %v", err)
	}

	log.Printf("参加登録サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("参加登録サービスの起動に失敗: %v", err)
	}
}
