package models

import (
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GenerateModels migrates the schema verbosely and writes typed query helpers to outPath.
// Run with GENERATE_MODELS=true.
func GenerateModels(db *gorm.DB, outPath string) error {
	db = db.Session(&gorm.Session{
		Logger:                 logger.Default.LogMode(logger.Info),
		SkipDefaultTransaction: true,
	})

	log.Info().Msg("Migrating models...")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(AllModels()...)
	g.Execute()

	log.Info().Str("outPath", outPath).Msg("Model generation complete")
	return nil
}

// ColumnDrift returns, per table, the database columns that no model field maps to.
// Tables that do not exist yet are skipped.
func ColumnDrift(db *gorm.DB) (map[string][]string, error) {
	drift := make(map[string][]string)

	for _, model := range AllModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !db.Migrator().HasTable(table) {
			continue
		}
		columns, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}

		for _, col := range columns {
			if !slices.Contains(stmt.Schema.DBNames, col.Name()) {
				drift[table] = append(drift[table], col.Name())
			}
		}
	}
	return drift, nil
}

// WriteColumnReport prints the column drift of every table. Run with GENERATE_COLUMN_REPORT=true.
func WriteColumnReport(w io.Writer, db *gorm.DB) error {
	drift, err := ColumnDrift(db)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")
	total := 0
	for _, model := range AllModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return err
		}
		table := stmt.Schema.Table

		fmt.Fprintf(w, "\n--- Table: %s ---\n", table)
		columns := drift[table]
		if len(columns) == 0 {
			fmt.Fprintln(w, "All columns are accounted for in the model.")
			continue
		}
		fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(columns))
		for _, col := range columns {
			fmt.Fprintf(w, "  - %s\n", col)
		}
		total += len(columns)
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\nTotal mismatched columns across all tables: %d\n", total)
	return nil
}
