// Package invoice は督促ワークフローの対象となる請求書のドメインモデルを提供する。
//
// 請求書の状態は閉じた列挙型 State で表し、状態遷移は Pipeline に
// 定義された遷移表のみから導出する。新しい督促段階を追加する場合は
// State の値と Pipeline の行を1つずつ追加すればよい。
package invoice
