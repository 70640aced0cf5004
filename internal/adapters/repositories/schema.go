package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Dialect captures the few places where Postgres and SQLite SQL differ.
type Dialect struct {
	Name string
	// Case-insensitive LIKE operator.
	ilike    string
	idType   string
	numType  string
	boolType string
	timeType string
	// Placeholders are "$n" when numbered, "?" otherwise.
	numbered bool
}

var (
	Postgres = Dialect{
		Name:     "postgres",
		ilike:    "ILIKE",
		idType:   "UUID",
		numType:  "NUMERIC",
		boolType: "BOOLEAN",
		timeType: "TIMESTAMPTZ",
		numbered: true,
	}
	// SQLite keeps decimals as TEXT so no digits are lost to REAL affinity.
	SQLite = Dialect{
		Name:     "sqlite",
		ilike:    "LIKE",
		idType:   "TEXT",
		numType:  "TEXT",
		boolType: "BOOLEAN",
		timeType: "TIMESTAMP",
	}
)

func (d Dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// InitSchema creates the calculations table and its indexes if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, b := d.numType, d.boolType
	createCalculationsQuery := `
	CREATE TABLE IF NOT EXISTS calculations (
		id ` + d.idType + ` PRIMARY KEY,
		pickup_address TEXT NOT NULL,
		delivery_address TEXT NOT NULL,
		length ` + n + ` NOT NULL,
		width ` + n + ` NOT NULL,
		height ` + n + ` NOT NULL,
		weight ` + n + ` NOT NULL,
		package_type TEXT NOT NULL,
		is_fragile ` + b + ` NOT NULL DEFAULT FALSE,
		needs_insurance ` + b + ` NOT NULL DEFAULT FALSE,
		distance ` + n + ` NOT NULL,
		base_price ` + n + ` NOT NULL,
		weight_charge ` + n + ` NOT NULL,
		volume_charge ` + n + ` NOT NULL,
		volume ` + n + ` NOT NULL,
		type_multiplier ` + n + ` NOT NULL,
		road_multiplier ` + n + ` NOT NULL,
		subtotal ` + n + ` NOT NULL,
		fuel_charge ` + n + ` NOT NULL,
		service_charge ` + n + ` NOT NULL,
		fragility_charge ` + n + ` NOT NULL,
		insurance_charge ` + n + ` NOT NULL,
		total ` + n + ` NOT NULL,
		currency TEXT NOT NULL,
		created_at ` + d.timeType + ` NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_calculations_created_at
	ON calculations(created_at DESC);
	`

	statements := []string{
		createCalculationsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
