// Package store contains the GORM-backed SQLite models of the client's run
// log.
//
// Database Structure (database file: run_log.db):
//
//	<home>/databases/
//	└── run_log.db
//	    └── submitted_transactions
package store

import (
	"gorm.io/gorm"
)

// Submission statuses.
const (
	StatusConfirmed       = "confirmed"
	StatusFailed          = "failed"
	StatusExpectedFailure = "expected_failure"
)

// SubmittedTransaction is one transaction this client signed and sent, or
// tried to.
type SubmittedTransaction struct {
	gorm.Model
	Operation        string `gorm:"index;not null"` // instruction name, e.g. "burn_for_blog"
	Program          string // program id
	Signer           string `gorm:"index"`
	Signature        string `gorm:"index"` // empty when sending failed
	Status           string `gorm:"index;not null"`
	Slot             uint64
	ComputeUnitLimit uint32
	UnitsConsumed    uint64
	BurnAmount       uint64 // units
	ErrorMsg         string `gorm:"type:text"`
	Hint             string // classified hint key, empty when unknown
}
