package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate adds a SELECT ... FOR UPDATE clause on dialects that support
// row locks. SQLite (used by the test suites) takes a database-level write
// lock instead, which serializes the same code paths, so the clause is
// skipped there rather than producing a syntax error.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
