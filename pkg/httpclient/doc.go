// Package httpclient は外部APIとJSONでやり取りするためのHTTPクライアントを提供する。
//
// メール送信APIなど、APIキーをヘッダーで渡す外部サービスの呼び出しに使う。
// すべてのリクエストは呼び出し元のコンテキストの期限に従う。
package httpclient
