package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wealthbook/internal/core"

	"github.com/shopspring/decimal"
)

// TrackerStore is the simplified-profile store: three independent
// per-category tables with no cross-references.
type TrackerStore struct {
	db *sql.DB
}

// OpenTracker opens (creating if needed) the tracker-profile database.
func OpenTracker(dbPath string) (*TrackerStore, error) {
	db, err := open(dbPath, ProfileTracker)
	if err != nil {
		return nil, err
	}
	return &TrackerStore{db: db}, nil
}

func (s *TrackerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HoldingUpdate carries the fields to overwrite on a tracker record.
// Nil fields are left unchanged. Term applies only to insurance rows.
type HoldingUpdate struct {
	Name  *string
	Units *decimal.Decimal
	Price *decimal.Decimal
	Term  *int
}

func (s *TrackerStore) AddStock(ctx context.Context, st core.Stock) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stocks (name, units, price) VALUES (?, ?, ?)`,
		st.Name, st.Units.String(), st.Price.String())
	if err != nil {
		return 0, fmt.Errorf("add stock: %w", mapErr(err))
	}
	return res.LastInsertId()
}

func (s *TrackerStore) ListStocks(ctx context.Context) ([]core.Stock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stock_id, name, units, price FROM stocks ORDER BY stock_id`)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()

	var stocks []core.Stock
	for rows.Next() {
		var st core.Stock
		var units, price string
		if err := rows.Scan(&st.ID, &st.Name, &units, &price); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		if st.Units, st.Price, err = decPair(units, price); err != nil {
			return nil, fmt.Errorf("scan stock %d: %w", st.ID, err)
		}
		stocks = append(stocks, st)
	}
	return stocks, rows.Err()
}

func (s *TrackerStore) UpdateStock(ctx context.Context, id int64, upd HoldingUpdate) error {
	return s.updateHolding(ctx, "stocks", "stock_id", id, upd)
}

func (s *TrackerStore) DeleteStock(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "stocks", "stock_id", id)
}

func (s *TrackerStore) AddMutualFund(ctx context.Context, f core.MutualFund) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO mutual_funds (name, units, price) VALUES (?, ?, ?)`,
		f.Name, f.Units.String(), f.Price.String())
	if err != nil {
		return 0, fmt.Errorf("add mutual fund: %w", mapErr(err))
	}
	return res.LastInsertId()
}

func (s *TrackerStore) ListMutualFunds(ctx context.Context) ([]core.MutualFund, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fund_id, name, units, price FROM mutual_funds ORDER BY fund_id`)
	if err != nil {
		return nil, fmt.Errorf("list mutual funds: %w", err)
	}
	defer rows.Close()

	var funds []core.MutualFund
	for rows.Next() {
		var f core.MutualFund
		var units, price string
		if err := rows.Scan(&f.ID, &f.Name, &units, &price); err != nil {
			return nil, fmt.Errorf("scan mutual fund: %w", err)
		}
		if f.Units, f.Price, err = decPair(units, price); err != nil {
			return nil, fmt.Errorf("scan mutual fund %d: %w", f.ID, err)
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

func (s *TrackerStore) UpdateMutualFund(ctx context.Context, id int64, upd HoldingUpdate) error {
	return s.updateHolding(ctx, "mutual_funds", "fund_id", id, upd)
}

func (s *TrackerStore) DeleteMutualFund(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "mutual_funds", "fund_id", id)
}

func (s *TrackerStore) AddInsurance(ctx context.Context, p core.InsurancePolicy) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO insurances (name, premium, term_months) VALUES (?, ?, ?)`,
		p.Name, p.Premium.String(), p.Term)
	if err != nil {
		return 0, fmt.Errorf("add insurance: %w", mapErr(err))
	}
	return res.LastInsertId()
}

func (s *TrackerStore) ListInsurances(ctx context.Context) ([]core.InsurancePolicy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT insurance_id, name, premium, term_months FROM insurances ORDER BY insurance_id`)
	if err != nil {
		return nil, fmt.Errorf("list insurances: %w", err)
	}
	defer rows.Close()

	var policies []core.InsurancePolicy
	for rows.Next() {
		var p core.InsurancePolicy
		var premium string
		if err := rows.Scan(&p.ID, &p.Name, &premium, &p.Term); err != nil {
			return nil, fmt.Errorf("scan insurance: %w", err)
		}
		d, err := decimal.NewFromString(premium)
		if err != nil {
			return nil, fmt.Errorf("scan insurance %d premium %q: %w", p.ID, premium, err)
		}
		p.Premium = d
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *TrackerStore) UpdateInsurance(ctx context.Context, id int64, upd HoldingUpdate) error {
	return s.updateHolding(ctx, "insurances", "insurance_id", id, upd)
}

func (s *TrackerStore) DeleteInsurance(ctx context.Context, id int64) error {
	return s.deleteRow(ctx, "insurances", "insurance_id", id)
}

// AggregateTotal sums the invested amount across a category: units times
// price for stocks and mutual funds, premium for insurance. An empty
// category totals to zero.
func (s *TrackerStore) AggregateTotal(ctx context.Context, category core.Category) (decimal.Decimal, error) {
	total := decimal.Zero
	switch category {
	case core.Stocks:
		stocks, err := s.ListStocks(ctx)
		if err != nil {
			return total, err
		}
		for _, st := range stocks {
			total = total.Add(st.Units.Mul(st.Price))
		}
	case core.MutualFunds:
		funds, err := s.ListMutualFunds(ctx)
		if err != nil {
			return total, err
		}
		for _, f := range funds {
			total = total.Add(f.Units.Mul(f.Price))
		}
	case core.Insurance:
		policies, err := s.ListInsurances(ctx)
		if err != nil {
			return total, err
		}
		for _, p := range policies {
			total = total.Add(p.Premium)
		}
	default:
		return total, core.ErrUnknownCategory
	}
	return total, nil
}

func (s *TrackerStore) updateHolding(ctx context.Context, table, idCol string, id int64, upd HoldingUpdate) error {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Units != nil {
		sets = append(sets, "units = ?")
		args = append(args, upd.Units.String())
	}
	if upd.Price != nil {
		col := "price = ?"
		if table == "insurances" {
			col = "premium = ?"
		}
		sets = append(sets, col)
		args = append(args, upd.Price.String())
	}
	if upd.Term != nil {
		sets = append(sets, "term_months = ?")
		args = append(args, *upd.Term)
	}
	if len(sets) == 0 {
		return fmt.Errorf("update %s: no fields to update", table)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), idCol)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *TrackerStore) deleteRow(ctx context.Context, table, idCol string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idCol), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func decPair(a, b string) (decimal.Decimal, decimal.Decimal, error) {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("decimal %q: %w", a, err)
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("decimal %q: %w", b, err)
	}
	return da, db, nil
}
