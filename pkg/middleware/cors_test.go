package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{
			name:       "許可されたオリジンにCORSヘッダーが設定されること",
			origins:    []string{"http://localhost:3000", "https://example.com"},
			method:     http.MethodGet,
			origin:     "https://example.com",
			wantStatus: http.StatusOK,
			wantAllow:  "https://example.com",
		},
		{
			name:       "許可されていないオリジンにはCORSヘッダーが設定されないこと",
			origins:    []string{"http://localhost:3000"},
			method:     http.MethodGet,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Originヘッダーが無い場合はCORSヘッダーが設定されないこと",
			origins:    []string{"*"},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "ワイルドカード指定で任意のオリジンが許可されること",
			origins:    []string{"*"},
			method:     http.MethodGet,
			origin:     "https://any.example.com",
			wantStatus: http.StatusOK,
			wantAllow:  "https://any.example.com",
		},
		{
			name:       "OPTIONSリクエストで204が返りハンドラーが実行されないこと",
			origins:    []string{"http://localhost:3000"},
			method:     http.MethodOptions,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusNoContent,
			wantAllow:  "http://localhost:3000",
		},
		{
			name:       "空のオリジンリストではCORSヘッダーが設定されないこと",
			method:     http.MethodGet,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			corsRouter(tt.origins).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ステータスコード = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
			if tt.wantAllow != "" {
				if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
					t.Errorf("Access-Control-Allow-Methods = %q", got)
				}
			}
		})
	}
}
