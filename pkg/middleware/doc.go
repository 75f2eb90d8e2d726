// Package middleware は全サービスで共有するGinミドルウェアを提供する。
// JWT認証とロールガード、CORS、パニックリカバリーを含む。
package middleware
