// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests using it are skipped unless GRAMS_TEST_DATABASE_URL (or
// DATABASE_URL) is set. Each test gets the schema migrated with the embedded
// goose migrations and runs inside a transaction that is rolled back
// afterwards:
//
//	func TestSomething(t *testing.T) {
//		db := testdb.GetTestDBWithT(t)
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			// use tx
//		})
//	}
package testdb
