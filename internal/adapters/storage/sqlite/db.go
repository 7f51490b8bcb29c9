// Package sqlite persiste las medicaciones en un fichero local: el
// backend por defecto para un despliegue personal de un solo usuario.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registro del driver
)

const schema = `
CREATE TABLE IF NOT EXISTS medications (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	schedule            TEXT NOT NULL DEFAULT '[]',
	notify              INTEGER NOT NULL DEFAULT 0,
	active              INTEGER NOT NULL DEFAULT 1,
	require_photo_proof INTEGER NOT NULL DEFAULT 0,
	dose_record         TEXT NOT NULL DEFAULT '[]',
	created_at          DATETIME NOT NULL,
	updated_at          DATETIME NOT NULL
);
`

// Open abre (o crea) la base local y asegura el esquema.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return db, nil
}
