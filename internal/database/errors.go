package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrStorageUnavailable means the database could not be opened or configured.
// It is fatal at startup.
var ErrStorageUnavailable = errors.New("storage unavailable")

// IsConstraint reports whether err is a SQLite constraint failure
// (UNIQUE, FOREIGN KEY, NOT NULL or CHECK).
func IsConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY conflict.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// IsForeignKeyViolation reports whether err is a FOREIGN KEY failure.
func IsForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
