// Package reminder は請求書督促ワークフローの状態遷移エンジンとHTTPサーバーを提供する。
//
// Engine は遷移表に従って、各状態の請求書を取得し、通知を送信してから
// 状態を1段階だけ進める。通知の送信は必ず状態更新より先に行い、
// 状態更新は「現在の状態が遷移元のままであれば」という条件付きで行う。
// 請求書1件の失敗は他の請求書の処理を止めない。
//
// 実行タイミング（cronやタイマー）は外部の責務であり、本パッケージは
// 1回のスイープを最後まで実行する操作のみを提供する。
package reminder
