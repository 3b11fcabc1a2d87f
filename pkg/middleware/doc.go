// Package middleware は督促サービスのHTTP APIで使うGinミドルウェアを提供する。
//
// 管理用APIのJWT検証、zerologによるアクセスログ、パニックリカバリ、CORS設定を含む。
package middleware
