package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestClientJSONMethods はHTTPメソッドごとのJSONリクエストを検証する。
func TestClientJSONMethods(t *testing.T) {
	t.Parallel()

	t.Run("PostJSONがボディを送信しレスポンスをデコードすること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("メソッド = %q, want POST", r.Method)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}

			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("リクエストボディのデコードに失敗: %v", err)
			}
			if body["title"] != "テスト" {
				t.Errorf("title = %q, want テスト", body["title"])
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"created-1"}`)
		}))
		t.Cleanup(server.Close)

		var result map[string]string
		err := New(server.URL).PostJSON(context.Background(), "/items", map[string]string{"title": "テスト"}, &result)
		if err != nil {
			t.Fatalf("PostJSON()でエラーが発生: %v", err)
		}
		if result["id"] != "created-1" {
			t.Errorf("id = %q, want created-1", result["id"])
		}
	})

	t.Run("GetJSONがレスポンスをデコードすること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/items/42" {
				t.Errorf("パス = %q, want /items/42", r.URL.Path)
			}
			fmt.Fprint(w, `{"id":"42","name":"品目"}`)
		}))
		t.Cleanup(server.Close)

		var result map[string]string
		if err := New(server.URL).GetJSON(context.Background(), "/items/42", &result); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
		if result["name"] != "品目" {
			t.Errorf("name = %q, want 品目", result["name"])
		}
	})

	t.Run("PutJSONとDeleteJSONが正しいメソッドを使用すること", func(t *testing.T) {
		t.Parallel()

		var methods []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			fmt.Fprint(w, `{}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		if err := client.PutJSON(context.Background(), "/items/1", map[string]string{"name": "更新"}, nil); err != nil {
			t.Fatalf("PutJSON()でエラーが発生: %v", err)
		}
		if err := client.DeleteJSON(context.Background(), "/items/1", nil); err != nil {
			t.Fatalf("DeleteJSON()でエラーが発生: %v", err)
		}

		if len(methods) != 2 || methods[0] != http.MethodPut || methods[1] != http.MethodDelete {
			t.Errorf("メソッド = %v, want [PUT DELETE]", methods)
		}
	})

	t.Run("resultがnilの場合はレスポンスボディを読み捨てること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"ignored":true}`)
		}))
		t.Cleanup(server.Close)

		if err := New(server.URL).GetJSON(context.Background(), "/items", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
	})
}

// TestClientErrors はエラー応答時の動作を検証する。
func TestClientErrors(t *testing.T) {
	t.Parallel()

	t.Run("2xx以外のステータスコードはエラーになること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"見つかりません"}`)
		}))
		t.Cleanup(server.Close)

		err := New(server.URL).GetJSON(context.Background(), "/missing", nil)
		if err == nil {
			t.Fatal("404応答でエラーを返すべき")
		}
	})

	t.Run("接続できないサービスはエラーになること", func(t *testing.T) {
		t.Parallel()

		// 既に閉じたサーバーのURLを使用する
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close()

		if err := New(server.URL).GetJSON(context.Background(), "/items", nil); err == nil {
			t.Fatal("接続失敗でエラーを返すべき")
		}
	})
}

// TestWithUserID はユーザーID伝播を検証する。
func TestWithUserID(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストのユーザーIDがX-User-IDヘッダーに設定されること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-User-ID"); got != "user-propagated" {
				t.Errorf("X-User-ID = %q, want user-propagated", got)
			}
			fmt.Fprint(w, `{}`)
		}))
		t.Cleanup(server.Close)

		ctx := WithUserID(context.Background(), "user-propagated")
		if err := New(server.URL).GetJSON(ctx, "/items", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
	})

	t.Run("ユーザーIDが無いコンテキストではヘッダーが設定されないこと", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-User-ID"); got != "" {
				t.Errorf("X-User-ID = %q, want empty string", got)
			}
			fmt.Fprint(w, `{}`)
		}))
		t.Cleanup(server.Close)

		if err := New(server.URL).GetJSON(context.Background(), "/items", nil); err != nil {
			t.Fatalf("GetJSON()でエラーが発生: %v", err)
		}
	})
}
