package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/reminder/pkg/httpclient"
)

// apiSendPath はメール送信APIのエンドポイント。
const apiSendPath = "/v3/smtp/email"

type apiAddress struct {
	Email string `json:"email"`
}

type apiEmail struct {
	To          []apiAddress `json:"to"`
	Sender      apiAddress   `json:"sender"`
	Subject     string       `json:"subject"`
	TextContent string       `json:"textContent"`
}

// API はHTTPのメール送信API経由でメールを送信する。
// APIキーは api-key ヘッダーで渡す。
type API struct {
	client *httpclient.Client
	sender string
}

// NewAPI は新しいメール送信API用の Sender を生成する。
func NewAPI(baseURL, apiKey, sender string, timeout time.Duration) *API {
	return &API{
		client: httpclient.New(baseURL,
			httpclient.WithHeader("api-key", apiKey),
			httpclient.WithTimeout(timeout),
		),
		sender: sender,
	}
}

// Send はメールを1通送信する。
func (a *API) Send(ctx context.Context, to, subject, body string) error {
	if err := checkHeader(to, subject); err != nil {
		return err
	}
	payload := apiEmail{
		To:          []apiAddress{{Email: to}},
		Sender:      apiAddress{Email: a.sender},
		Subject:     subject,
		TextContent: body,
	}
	if err := a.client.PostJSON(ctx, apiSendPath, payload, nil); err != nil {
		return fmt.Errorf("メール送信APIの呼び出しに失敗: %w", err)
	}
	return nil
}
