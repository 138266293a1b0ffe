package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

var _ repository.ModuleRepository = (*ModuleDB)(nil)

// ModuleDB stores catalog modules.
type ModuleDB struct {
	conn *sql.DB
}

const moduleColumns = `id, name, short_description, description, content,
	study_credit, location, level, learning_outcomes`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanModule(s scanner, m *model.Module) error {
	return s.Scan(
		&m.ID, &m.Name, &m.ShortDescription, &m.Description, &m.Content,
		&m.StudyCredit, &m.Location, &m.Level, &m.LearningOutcomes,
	)
}

// Create inserts a new module and sets its ID.
func (db *ModuleDB) Create(ctx context.Context, module *model.Module) error {
	module.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO modules (`+moduleColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		module.ID,
		module.Name,
		module.ShortDescription,
		module.Description,
		module.Content,
		module.StudyCredit,
		module.Location,
		module.Level,
		module.LearningOutcomes,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating module: %w", err)
	}

	return nil
}

// GetByID returns apperror.ErrNotFound when no module has the given ID.
func (db *ModuleDB) GetByID(ctx context.Context, id string) (*model.Module, error) {
	var m model.Module

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = ?`,
		id,
	)
	if err := scanModule(row, &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("module", id)
		}
		return nil, fmt.Errorf("sqlite: getting module %s: %w", id, err)
	}

	return &m, nil
}

// List returns the modules matching filter, ordered by name.
//
// BUILDING A DYNAMIC WHERE CLAUSE SAFELY:
// The number of conditions depends on the filter, so the SQL string is
// assembled at runtime. Only fixed fragments and "?" placeholders are ever
// concatenated; every user-supplied value goes through args.
func (db *ModuleDB) List(ctx context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	var (
		where []string
		args  []any
	)

	if len(filter.Locations) > 0 {
		where = append(where, "location IN ("+placeholders(len(filter.Locations))+")")
		for _, l := range filter.Locations {
			args = append(args, l)
		}
	}
	if len(filter.StudyCredits) > 0 {
		where = append(where, "study_credit IN ("+placeholders(len(filter.StudyCredits))+")")
		for _, c := range filter.StudyCredits {
			args = append(args, c)
		}
	}
	if len(filter.Levels) > 0 {
		where = append(where, "level IN ("+placeholders(len(filter.Levels))+")")
		for _, l := range filter.Levels {
			args = append(args, l)
		}
	}
	if filter.Search != "" {
		// instr(lower(x), lower(?)) is a plain substring match: no LIKE
		// wildcards to escape.
		where = append(where, `(instr(lower(name), lower(?)) > 0
			OR instr(lower(short_description), lower(?)) > 0
			OR instr(lower(description), lower(?)) > 0)`)
		args = append(args, filter.Search, filter.Search, filter.Search)
	}

	query := `SELECT ` + moduleColumns + ` FROM modules`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing modules: %w", err)
	}
	defer rows.Close()

	modules := []model.Module{}
	for rows.Next() {
		var m model.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, fmt.Errorf("sqlite: scanning module row: %w", err)
		}
		modules = append(modules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating modules: %w", err)
	}

	return modules, nil
}

// Update overwrites every column of an existing module.
// RowsAffected == 0 means the ID did not match anything.
func (db *ModuleDB) Update(ctx context.Context, module *model.Module) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE modules
		 SET name = ?, short_description = ?, description = ?, content = ?,
		     study_credit = ?, location = ?, level = ?, learning_outcomes = ?
		 WHERE id = ?`,
		module.Name,
		module.ShortDescription,
		module.Description,
		module.Content,
		module.StudyCredit,
		module.Location,
		module.Level,
		module.LearningOutcomes,
		module.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating module %s: %w", module.ID, err)
	}

	return checkAffected(result, "module", module.ID)
}

func (db *ModuleDB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting module %s: %w", id, err)
	}

	return checkAffected(result, "module", id)
}

// FilterOptions counts modules per distinct location, study credit and level.
func (db *ModuleDB) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	locations, err := countBy[string](ctx, db.conn, "location")
	if err != nil {
		return nil, err
	}
	credits, err := countBy[int](ctx, db.conn, "study_credit")
	if err != nil {
		return nil, err
	}
	levels, err := countBy[string](ctx, db.conn, "level")
	if err != nil {
		return nil, err
	}

	return &model.FilterOptions{
		Locations:    locations,
		StudyCredits: credits,
		Levels:       levels,
	}, nil
}

// countBy groups modules by column. Empty strings are skipped: a module
// without a location should not show up as a "" filter choice.
func countBy[T string | int](ctx context.Context, conn *sql.DB, column string) ([]model.FilterOption[T], error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) FROM modules
		 WHERE `+column+` <> ''
		 GROUP BY `+column+`
		 ORDER BY `+column,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting modules by %s: %w", column, err)
	}
	defer rows.Close()

	options := []model.FilterOption[T]{}
	for rows.Next() {
		var opt model.FilterOption[T]
		if err := rows.Scan(&opt.Value, &opt.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s count: %w", column, err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating %s counts: %w", column, err)
	}

	return options, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func checkAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
