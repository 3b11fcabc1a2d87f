// Package event は請求書の状態遷移を記録する監査イベントの型を提供する。
package event
