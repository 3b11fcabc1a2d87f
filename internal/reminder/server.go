package reminder

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nao1215/reminder/internal/invoice"
	"github.com/nao1215/reminder/internal/metrics"
	"github.com/nao1215/reminder/pkg/event"
	"github.com/nao1215/reminder/pkg/middleware"
)

// InvoiceReader は管理用APIとヘルスチェックが使う読み取り操作。
type InvoiceReader interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (invoice.Invoice, error)
	FindByState(ctx context.Context, state invoice.State) ([]invoice.Invoice, error)
	Events(ctx context.Context, id string) ([]event.Event, error)
}

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	// JWTSecret は管理用APIのトークン検証に使う。空の場合、管理用APIは公開しない。
	JWTSecret string
	// CORSAllowedOrigins はクロスオリジンを許可するオリジンの一覧。
	CORSAllowedOrigins []string
}

// Server は督促サービスのHTTPサーバー。
type Server struct {
	router   *gin.Engine
	engine   *Engine
	invoices InvoiceReader
	logger   zerolog.Logger
}

// NewServer は新しいHTTPサーバーを生成する。
func NewServer(engine *Engine, invoices InvoiceReader, cfg ServerConfig, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "http").Logger()

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}

	s := &Server{
		router:   router,
		engine:   engine,
		invoices: invoices,
		logger:   logger,
	}
	s.setupRoutes(cfg)
	return s
}

// Handler はサーバーの http.Handler を返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxが終了したらグレースフルに停止する。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTPサーバーを起動します")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRoutes(cfg ServerConfig) {
	api := s.router.Group("/api/v1")
	{
		// 督促スイープの実行（外部のスケジューラーから呼び出される）
		api.POST("/reminders/process", s.handleProcess())
	}
	s.router.POST("/reminders/process", s.handleProcess())

	if cfg.JWTSecret != "" {
		invoices := api.Group("/invoices")
		invoices.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			invoices.GET("", s.handleListInvoices())
			invoices.GET("/:id", s.handleGetInvoice())
			invoices.GET("/:id/events", s.handleListEvents())
		}
	} else {
		s.logger.Warn().Msg("JWT_SECRETが未設定のため管理用APIを無効にします")
	}

	s.router.GET("/health", s.handleHealth())
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// handleProcess は督促スイープを1回実行し、結果を返す。
func (s *Server) handleProcess() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 呼び出し元の切断でスイープを途中で止めない
		ctx := context.WithoutCancel(c.Request.Context())

		report, err := s.engine.ProcessReminders(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  err.Error(),
				"report": report,
			})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (s *Server) handleListInvoices() gin.HandlerFunc {
	return func(c *gin.Context) {
		states := invoice.States()
		if q := c.Query("state"); q != "" {
			st, err := invoice.ParseState(q)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			states = []invoice.State{st}
		}

		result := make([]invoice.Invoice, 0)
		for _, st := range states {
			list, err := s.invoices.FindByState(c.Request.Context(), st)
			if err != nil {
				s.logger.Error().Err(err).Str("state", string(st)).Msg("請求書一覧の取得に失敗")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "請求書一覧の取得に失敗しました"})
				return
			}
			result = append(result, list...)
		}
		c.JSON(http.StatusOK, gin.H{"invoices": result})
	}
}

func (s *Server) handleGetInvoice() gin.HandlerFunc {
	return func(c *gin.Context) {
		inv, ok := s.lookup(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		inv, ok := s.lookup(c)
		if !ok {
			return
		}
		events, err := s.invoices.Events(c.Request.Context(), inv.ID)
		if err != nil {
			s.logger.Error().Err(err).Str("invoice_id", inv.ID).Msg("遷移履歴の取得に失敗")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "遷移履歴の取得に失敗しました"})
			return
		}
		if events == nil {
			events = []event.Event{}
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// lookup はパスパラメータの請求書を取得する。見つからない場合はレスポンスを書き込み false を返す。
func (s *Server) lookup(c *gin.Context) (invoice.Invoice, bool) {
	inv, err := s.invoices.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "請求書が見つかりません"})
		return invoice.Invoice{}, false
	case err != nil:
		s.logger.Error().Err(err).Str("invoice_id", c.Param("id")).Msg("請求書の取得に失敗")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "請求書の取得に失敗しました"})
		return invoice.Invoice{}, false
	}
	return inv, true
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.invoices.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "reminder"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "reminder"})
	}
}
