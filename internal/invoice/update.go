package invoice

// UpdateResult は条件付き状態更新の結果を表す。
type UpdateResult int

const (
	// Updated は期待した遷移元状態のまま更新できたことを表す。
	Updated UpdateResult = iota + 1
	// Conflict は現在の状態が期待した遷移元と異なり、更新しなかったことを表す。
	// 並行して実行された別のスイープが先に進めた場合に発生する。
	Conflict
	// NotFound は請求書が存在しなかったことを表す。
	NotFound
)

func (r UpdateResult) String() string {
	switch r {
	case Updated:
		return "updated"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
