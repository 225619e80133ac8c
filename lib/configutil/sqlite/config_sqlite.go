package configsqlite

import (
	devenv "attendance-backend/dev/env"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type Struct struct {
	// a filesystem path, "<dev_state>/..." or ":memory:"
	File string `json:"file"`
}

// OpenDB opens (creating if needed) the database and applies schema, every
// statement in schema is expected to be idempotent.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a path was not specified")
	}
	dbpath, err := devenv.ResolvePath(config.File)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(dbpath, ":memory:") {
		err = os.MkdirAll(filepath.Dir(dbpath), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// a single connection also keeps ":memory:" databases from splitting
	// across the pool.
	db.SetMaxOpenConns(1)
	if !strings.HasPrefix(dbpath, ":memory:") {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
