// Package planstore persists a day's simulation result to Postgres, adapted
// from the teacher's MPC decision persistence: a delete-then-upsert
// transaction against a fixed day's rows, keyed by hour.
package planstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/runner"
)

// Store wraps a Postgres connection pool for plan persistence.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres using the given connection string.
func Open(connString string) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("planstore: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("planstore: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlan persists all 24 hourly reports for the given plan date, replacing
// any existing rows for that date and mode within one transaction.
func (s *Store) SavePlan(ctx context.Context, planDate time.Time, mode runner.Mode, result runner.SimulationResult) error {
	day := planDate.Truncate(24 * time.Hour)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("planstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_hours WHERE plan_date = $1 AND mode = $2`, day, string(mode)); err != nil {
		return fmt.Errorf("planstore: delete existing plan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plan_hours (
			plan_date, mode, hour, solar_kwh, load_kwh, battery_level_kwh,
			battery_soc, grid_import_kwh, grid_export_kwh, net_energy_kwh,
			action, price, cost, savings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (plan_date, mode, hour) DO UPDATE SET
			solar_kwh = EXCLUDED.solar_kwh,
			load_kwh = EXCLUDED.load_kwh,
			battery_level_kwh = EXCLUDED.battery_level_kwh,
			battery_soc = EXCLUDED.battery_soc,
			grid_import_kwh = EXCLUDED.grid_import_kwh,
			grid_export_kwh = EXCLUDED.grid_export_kwh,
			net_energy_kwh = EXCLUDED.net_energy_kwh,
			action = EXCLUDED.action,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			savings = EXCLUDED.savings
	`)
	if err != nil {
		return fmt.Errorf("planstore: prepare: %w", err)
	}
	defer stmt.Close()

	for _, h := range result.Hourly {
		if _, err := stmt.ExecContext(ctx,
			day, string(mode), h.Hour, h.SolarKWh, h.LoadKWh, h.BatteryLevelKWh,
			h.BatterySOC, h.GridImportKWh, h.GridExportKWh, h.NetEnergyKWh,
			h.Action.String(), h.Price, h.Cost, h.Savings,
		); err != nil {
			return fmt.Errorf("planstore: insert hour %d: %w", h.Hour, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("planstore: commit: %w", err)
	}
	return nil
}

// LoadPlan reads back the persisted hourly reports for a plan date and mode,
// ordered by hour. Returns (nil, nil) if no plan is stored for that key.
func (s *Store) LoadPlan(ctx context.Context, planDate time.Time, mode runner.Mode) ([]runner.HourlyReport, error) {
	day := planDate.Truncate(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx, `
		SELECT hour, solar_kwh, load_kwh, battery_level_kwh, battery_soc,
			grid_import_kwh, grid_export_kwh, net_energy_kwh, action, price, cost, savings
		FROM plan_hours
		WHERE plan_date = $1 AND mode = $2
		ORDER BY hour ASC
	`, day, string(mode))
	if err != nil {
		return nil, fmt.Errorf("planstore: query: %w", err)
	}
	defer rows.Close()

	var out []runner.HourlyReport
	for rows.Next() {
		var h runner.HourlyReport
		var actionStr string
		if err := rows.Scan(
			&h.Hour, &h.SolarKWh, &h.LoadKWh, &h.BatteryLevelKWh, &h.BatterySOC,
			&h.GridImportKWh, &h.GridExportKWh, &h.NetEnergyKWh, &actionStr, &h.Price, &h.Cost, &h.Savings,
		); err != nil {
			return nil, fmt.Errorf("planstore: scan: %w", err)
		}
		parsedAction, err := action.Parse(actionStr)
		if err != nil {
			return nil, fmt.Errorf("planstore: %w", err)
		}
		h.Action = parsedAction
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("planstore: iterate: %w", err)
	}
	return out, nil
}
