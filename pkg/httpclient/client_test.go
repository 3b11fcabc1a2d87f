package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type testPayload struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("既定のタイムアウトが30秒であること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080")
		if client.baseURL != "http://localhost:8080" {
			t.Errorf("baseURL = %q, want %q", client.baseURL, "http://localhost:8080")
		}
		if client.httpClient.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", client.httpClient.Timeout, DefaultTimeout)
		}
	})

	t.Run("WithTimeoutでタイムアウトを変更できること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080", WithTimeout(3*time.Second))
		if client.httpClient.Timeout != 3*time.Second {
			t.Errorf("Timeout = %v, want 3s", client.httpClient.Timeout)
		}
	})

	t.Run("0以下のタイムアウトは無視されること", func(t *testing.T) {
		t.Parallel()

		client := New("http://localhost:8080", WithTimeout(0))
		if client.httpClient.Timeout != DefaultTimeout {
			t.Errorf("Timeout = %v, want %v", client.httpClient.Timeout, DefaultTimeout)
		}
	})
}

func TestPostJSON(t *testing.T) {
	t.Parallel()

	t.Run("JSONボディと設定済みヘッダーが送信されること", func(t *testing.T) {
		t.Parallel()

		var (
			gotMethod, gotPath, gotKey, gotType string
			gotBody                             testPayload
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotKey = r.Header.Get("api-key")
			gotType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"ok","value":2}`))
		}))
		defer server.Close()

		client := New(server.URL, WithHeader("api-key", "secret"))
		var result testPayload
		if err := client.PostJSON(context.Background(), "/v3/smtp/email", testPayload{Name: "a", Value: 1}, &result); err != nil {
			t.Fatalf("PostJSON() error = %v", err)
		}

		if gotMethod != http.MethodPost {
			t.Errorf("Method = %q, want POST", gotMethod)
		}
		if gotPath != "/v3/smtp/email" {
			t.Errorf("Path = %q", gotPath)
		}
		if gotKey != "secret" {
			t.Errorf("api-key = %q, want secret", gotKey)
		}
		if gotType != "application/json" {
			t.Errorf("Content-Type = %q", gotType)
		}
		if gotBody.Name != "a" || gotBody.Value != 1 {
			t.Errorf("受信ボディ = %+v", gotBody)
		}
		if result.Name != "ok" || result.Value != 2 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("resultがnilの場合でもエラーにならないこと", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		if err := New(server.URL).PostJSON(context.Background(), "/", testPayload{}, nil); err != nil {
			t.Fatalf("PostJSON() error = %v", err)
		}
	})

	t.Run("2xx以外ではStatusErrorが返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"code":"unauthorized"}`)
		}))
		defer server.Close()

		err := New(server.URL).PostJSON(context.Background(), "/", testPayload{}, nil)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("StatusErrorが返るべき: %v", err)
		}
		if se.StatusCode != http.StatusUnauthorized {
			t.Errorf("StatusCode = %d", se.StatusCode)
		}
		if !strings.Contains(se.Body, "unauthorized") {
			t.Errorf("Body = %q", se.Body)
		}
	})

	t.Run("不正なJSONレスポンスでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "not json")
		}))
		defer server.Close()

		var result testPayload
		if err := New(server.URL).PostJSON(context.Background(), "/", testPayload{}, &result); err == nil {
			t.Fatal("エラーが返るべき")
		}
	})

	t.Run("キャンセルされたコンテキストでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := New(server.URL).PostJSON(ctx, "/", testPayload{}, nil); err == nil {
			t.Fatal("エラーが返るべき")
		}
	})

	t.Run("シリアライズできないボディでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		err := New("http://localhost:1").PostJSON(context.Background(), "/", make(chan int), nil)
		if err == nil || !strings.Contains(err.Error(), "シリアライズ") {
			t.Fatalf("シリアライズエラーが返るべき: %v", err)
		}
	})
}
