package query

// QueryType 查询类型
type QueryType string

const (
	QueryTypeTerm QueryType = "term"
)

// Quoter 引用列名，由存储方言提供
type Quoter func(identifier string) string

// Query 查询条件接口
type Query interface {
	Type() QueryType
	// ToSQL 渲染为参数化的 WHERE 子句，占位符统一为 ?
	ToSQL(quote Quoter) (string, []any, error)
}
