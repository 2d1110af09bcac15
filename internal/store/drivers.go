package store

import (
	// "sqlite": pure Go, the default.
	_ "modernc.org/sqlite"
	// "sqlite3": cgo, selected with database.driver.
	_ "github.com/mattn/go-sqlite3"
)
