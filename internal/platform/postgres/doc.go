// Package postgres provides the PostgreSQL progress store for shared
// deployments, together with its connection setup and embedded goose
// migrations.
package postgres
