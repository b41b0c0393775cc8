package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/tradeherder/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and ensures the schema exists. Derived
// tables are created here too, but they are dropped and recreated by every
// processing run; only raw_entries survives across runs.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if err := EnsureSchema(db); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.", "databasePath", databasePath)
	} else {
		stdlog.Println("Database tables ensured/created:", databasePath)
	}
}

const rawSchema = `
	CREATE TABLE IF NOT EXISTS raw_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		ref_date TEXT NOT NULL,
		symbol TEXT NOT NULL DEFAULT '',
		broker_ref TEXT NOT NULL,
		description TEXT NOT NULL,
		period TEXT NOT NULL DEFAULT '',
		currency TEXT NOT NULL DEFAULT '',
		open_price TEXT NOT NULL,
		close_price TEXT NOT NULL,
		size TEXT NOT NULL,
		amount TEXT NOT NULL,
		brokerage TEXT NOT NULL DEFAULT '0',
		fees TEXT NOT NULL DEFAULT '0',
		tags TEXT NOT NULL DEFAULT '',
		category INTEGER NOT NULL DEFAULT 0,
		position_id INTEGER NOT NULL DEFAULT 0,
		activity_id INTEGER NOT NULL DEFAULT 0
	);
	`

// Decimal columns are TEXT on purpose: sqlite has no exact numeric type, and
// round-tripping through REAL would reintroduce binary floating point.
const derivedSchema = `
	CREATE TABLE IF NOT EXISTS positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		instrument INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		description TEXT NOT NULL,
		broker_ref TEXT NOT NULL,
		open_date TEXT NOT NULL,
		close_date TEXT NOT NULL DEFAULT '',
		status INTEGER NOT NULL,
		entry_quantity TEXT NOT NULL,
		exit_quantity TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		exit_price TEXT NOT NULL,
		brokerage TEXT NOT NULL,
		fees TEXT NOT NULL,
		net_total_cost TEXT NOT NULL,
		gross_total_cost TEXT NOT NULL,
		num_opens INTEGER NOT NULL,
		num_closes INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position_id INTEGER NOT NULL DEFAULT 0,
		trade_id INTEGER NOT NULL DEFAULT 0,
		ref_date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		description TEXT NOT NULL,
		broker_ref TEXT NOT NULL,
		action INTEGER NOT NULL,
		quantity TEXT NOT NULL,
		price TEXT NOT NULL,
		brokerage TEXT NOT NULL,
		fees TEXT NOT NULL,
		net_total_cost TEXT NOT NULL,
		gross_total_cost TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position_id INTEGER NOT NULL DEFAULT 0,
		import_seq INTEGER NOT NULL,
		entry_date TEXT NOT NULL,
		exit_date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		description TEXT NOT NULL,
		broker_ref TEXT NOT NULL,
		quantity TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		exit_price TEXT NOT NULL,
		entry_brokerage TEXT NOT NULL,
		exit_brokerage TEXT NOT NULL,
		fees TEXT NOT NULL,
		gross_total_imp TEXT NOT NULL,
		category INTEGER NOT NULL
	);
	`

// EnsureSchema creates the raw and derived tables if missing.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(rawSchema); err != nil {
		return err
	}
	_, err := db.Exec(derivedSchema)
	return err
}

// RefreshDerivedTables drops and recreates the generated tables for a new
// processing run. Raw entry back-links are cleared at the same time so a
// rerun starts from a clean slate.
func RefreshDerivedTables(db *sql.DB) error {
	stmts := []string{
		"DROP TABLE IF EXISTS positions",
		"DROP TABLE IF EXISTS activities",
		"DROP TABLE IF EXISTS trades",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	if _, err := db.Exec(derivedSchema); err != nil {
		return err
	}
	_, err := db.Exec("UPDATE raw_entries SET position_id = 0, activity_id = 0")
	return err
}
