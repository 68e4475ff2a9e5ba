// Package store implementa el adaptador de persistencia del kardex: un único
// slot durable {balances, ledger} bajo una clave fija, sobre SQLite embebido.
// Es un caché best-effort, no un libro de registro: un fallo de guardado
// nunca hace fallar una mutación y un slot ilegible se trata como ausencia de
// datos.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/Kardex-api/internal/application/kardex"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS kardex_state (
	state_key  TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLiteStore implementa kardex.StateStore sobre un archivo SQLite.
type SQLiteStore struct {
	db  *sqlx.DB
	key string
	log *logger.Logger
}

// NewSQLiteStore abre (o crea) el archivo y asegura el esquema.
func NewSQLiteStore(path, stateKey string, log *logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: abrir %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: crear esquema: %w", err)
	}
	return &SQLiteStore{db: db, key: stateKey, log: log}, nil
}

// Save serializa el estado y lo escribe en el slot (upsert por clave).
func (s *SQLiteStore) Save(ctx context.Context, st kardex.PersistedState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("store: serializar estado: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kardex_state (state_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(state_key) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		s.key, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: guardar estado: %w", err)
	}
	return nil
}

// Load restaura el slot. Sin datos previos devuelve (nil, nil); un payload
// que no se puede interpretar también (el motor arranca solo con seed).
func (s *SQLiteStore) Load(ctx context.Context) (*kardex.PersistedState, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM kardex_state WHERE state_key = ?`, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: leer estado: %w", err)
	}

	var st kardex.PersistedState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		s.log.Warn().Err(err).Msg("estado persistido ilegible; se descarta")
		return nil, nil
	}
	return &st, nil
}

// Close cierra la conexión.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
