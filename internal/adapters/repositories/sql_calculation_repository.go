package repositories

import (
	"context"
	"database/sql"
	"delivery-quote-service/internal/domain"
	"delivery-quote-service/internal/platform/obs"
	"delivery-quote-service/internal/ports"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const calculationColumns = `
	id,
	pickup_address,
	delivery_address,
	length,
	width,
	height,
	weight,
	package_type,
	is_fragile,
	needs_insurance,
	distance,
	base_price,
	weight_charge,
	volume_charge,
	volume,
	type_multiplier,
	road_multiplier,
	subtotal,
	fuel_charge,
	service_charge,
	fragility_charge,
	insurance_charge,
	total,
	currency,
	created_at`

const calculationColumnCount = 25

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLCalculationRepository implements ports.CalculationRepository on database/sql.
// Rows are insert-only.
type SQLCalculationRepository struct {
	DB      *sql.DB
	dialect Dialect
}

func NewPostgresCalculationRepository(db *sql.DB) *SQLCalculationRepository {
	return &SQLCalculationRepository{DB: db, dialect: Postgres}
}

func NewSqliteCalculationRepository(db *sql.DB) *SQLCalculationRepository {
	return &SQLCalculationRepository{DB: db, dialect: SQLite}
}

// Create stores one calculation.
func (s *SQLCalculationRepository) Create(ctx context.Context, c *domain.Calculation) (err error) {
	defer obs.Time(ctx, "calculations.Create")(&err)

	if s.DB == nil {
		return errors.New("calculation repository: db is nil")
	}
	if c == nil {
		return errors.New("create calculation: nil calculation")
	}

	marks := make([]string, calculationColumnCount)
	for i := range marks {
		marks[i] = s.dialect.placeholder(i + 1)
	}

	q := `INSERT INTO calculations (` + calculationColumns + `)
	VALUES (` + strings.Join(marks, ", ") + `);`

	req, b := c.Request, c.Breakdown
	_, err = s.DB.ExecContext(ctx, q,
		c.ID,
		req.PickupAddress,
		req.DeliveryAddress,
		req.Length,
		req.Width,
		req.Height,
		req.Weight,
		string(req.Category),
		req.IsFragile,
		req.NeedsInsurance,
		b.Distance,
		b.BasePrice,
		b.WeightCharge,
		b.VolumeCharge,
		b.Volume,
		b.TypeMultiplier,
		b.RoadMultiplier,
		b.Subtotal,
		b.FuelCharge,
		b.ServiceCharge,
		b.FragilityCharge,
		b.InsuranceCharge,
		b.Total,
		b.Currency,
		c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create calculation id=%s: %w", c.ID, err)
	}

	return nil
}

// List returns calculations matching filter, newest first.
func (s *SQLCalculationRepository) List(ctx context.Context, f ports.CalculationFilter) (_ []*domain.Calculation, err error) {
	defer obs.Time(ctx, "calculations.List")(&err)

	if s.DB == nil {
		return nil, errors.New("calculation repository: db is nil")
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return s.dialect.placeholder(len(args))
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		op := s.dialect.ilike
		where = append(where, fmt.Sprintf(
			`(pickup_address %s %s ESCAPE '\' OR delivery_address %s %s ESCAPE '\')`,
			op, arg(pattern), op, arg(pattern),
		))
	}
	if f.Category != "" {
		where = append(where, "package_type = "+arg(f.Category))
	}
	if f.IsFragile != nil {
		where = append(where, "is_fragile = "+arg(*f.IsFragile))
	}
	if f.NeedsInsurance != nil {
		where = append(where, "needs_insurance = "+arg(*f.NeedsInsurance))
	}

	q := `SELECT ` + calculationColumns + `
	FROM calculations`
	if len(where) > 0 {
		q += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\tORDER BY created_at DESC, id DESC\n\tLIMIT " + arg(clampLimit(f.Limit)) + ";"

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list calculations: query calculations table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Calculation, 0, 16)
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("list calculations: scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calculations: row iteration: %w", err)
	}

	return out, nil
}

// Get returns one calculation or domain.ErrCalculationNotFound.
func (s *SQLCalculationRepository) Get(ctx context.Context, id uuid.UUID) (_ *domain.Calculation, err error) {
	defer obs.Time(ctx, "calculations.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("calculation repository: db is nil")
	}

	q := `SELECT ` + calculationColumns + `
	FROM calculations
	WHERE id = ` + s.dialect.placeholder(1) + `;`

	c, err := scanCalculation(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get calculation id=%s: %w", id, domain.ErrCalculationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation id=%s: %w", id, err)
	}

	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalculation(row rowScanner) (*domain.Calculation, error) {
	var (
		c        domain.Calculation
		category string
	)
	req, b := &c.Request, &c.Breakdown

	err := row.Scan(
		&c.ID,
		&req.PickupAddress,
		&req.DeliveryAddress,
		&req.Length,
		&req.Width,
		&req.Height,
		&req.Weight,
		&category,
		&req.IsFragile,
		&req.NeedsInsurance,
		&b.Distance,
		&b.BasePrice,
		&b.WeightCharge,
		&b.VolumeCharge,
		&b.Volume,
		&b.TypeMultiplier,
		&b.RoadMultiplier,
		&b.Subtotal,
		&b.FuelCharge,
		&b.ServiceCharge,
		&b.FragilityCharge,
		&b.InsuranceCharge,
		&b.Total,
		&b.Currency,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Category = domain.PackageCategory(category)
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return ports.DefaultListLimit
	case n > ports.MaxListLimit:
		return ports.MaxListLimit
	}
	return n
}
