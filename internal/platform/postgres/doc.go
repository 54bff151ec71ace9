// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx stdlib driver. The schema lives in the embedded
// migrations sub-package.
package postgres
