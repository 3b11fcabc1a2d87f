package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPConfig はSMTPサーバーへの接続設定。
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP はSMTPサーバー経由でメールを送信する。
type SMTP struct {
	cfg    SMTPConfig
	dialer net.Dialer
	now    func() time.Time
}

// NewSMTP は新しいSMTP送信手段を生成する。
func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, now: time.Now}
}

// Send はメールを1通送信する。接続からQUITまでの全体がctxの期限に従う。
func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	if err := checkHeader(to, subject, s.cfg.From); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTPサーバーへの接続に失敗: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// 期限の無いキャンセルにも応答できるよう、キャンセル時に接続を閉じる
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("SMTPセッションの開始に失敗: %w", wrapCtx(ctx, err))
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("STARTTLSに失敗: %w", wrapCtx(ctx, err))
		}
	}
	if s.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("SMTP認証に失敗: %w", wrapCtx(ctx, err))
			}
		}
	}

	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROMに失敗: %w", wrapCtx(ctx, err))
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TOに失敗: %w", wrapCtx(ctx, err))
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATAに失敗: %w", wrapCtx(ctx, err))
	}
	if _, err := w.Write(buildMessage(s.cfg.From, to, subject, body, s.now())); err != nil {
		return fmt.Errorf("本文の送信に失敗: %w", wrapCtx(ctx, err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("本文の送信に失敗: %w", wrapCtx(ctx, err))
	}
	return c.Quit()
}

// wrapCtx はctxが終了している場合、その理由をエラーに含める。
func wrapCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%w)", ctxErr, err)
	}
	return err
}

// buildMessage はUTF-8のプレーンテキストメールを組み立てる。
func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
