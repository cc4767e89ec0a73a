// Package schema evolves the client configuration tables additively at
// startup. Every statement is best-effort: failures are recorded in the
// Report and logged, and never stop the process from booting.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/logger"
)

// mysqlErrDuplicateColumn is ER_DUP_FIELDNAME.
const mysqlErrDuplicateColumn = 1060

const dialectMySQL = "mysql"

// Recorder is notified of every failed statement.
type Recorder interface {
	SchemaStepFailed(step string)
}

// ErrorReporter receives failed statements for external error tracking.
type ErrorReporter interface {
	CaptureError(err error, tags map[string]string)
}

// Manager creates missing tables and columns, aligns legacy column
// definitions on MySQL, backfills documented defaults and assigns the
// client surrogate keys.
type Manager struct {
	db       *gorm.DB
	log      logger.Logger
	recorder Recorder
	reporter ErrorReporter
	tables   []Table
	newKey   func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder reports failed statements to r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithErrorReporter forwards failed statements to r.
func WithErrorReporter(r ErrorReporter) Option {
	return func(m *Manager) { m.reporter = r }
}

// WithTables replaces the default Catalog.
func WithTables(tables []Table) Option {
	return func(m *Manager) { m.tables = tables }
}

// NewManager creates a Manager over db.
func NewManager(db *gorm.DB, log logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		db:     db,
		log:    log.Module("schema"),
		tables: Catalog(),
		newKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run applies every step once. It is safe to call on every startup and
// never returns an error; inspect the Report for failures.
func (m *Manager) Run(ctx context.Context) *Report {
	report := &Report{}
	db := m.db.WithContext(ctx)
	isMySQL := db.Dialector.Name() == dialectMySQL

	for _, t := range m.tables {
		if res, ran := m.ensureTable(db, t); ran {
			m.record(report, res)
		}

		existing, err := m.columns(db, t.Name)
		if err != nil {
			m.record(report, StepResult{Step: StepInspect, Table: t.Name, Err: err})
			continue
		}

		for _, c := range t.Added {
			if _, ok := existing[strings.ToLower(c.Name)]; ok {
				continue
			}
			res := m.addColumn(db, t, c)
			m.record(report, res)
			if res.Err == nil {
				existing[strings.ToLower(c.Name)] = nil
			}
		}

		if isMySQL {
			m.alignColumns(db, t, existing, report)
		}

		for _, c := range t.Columns() {
			if !c.HasDefault() {
				continue
			}
			if _, ok := existing[strings.ToLower(c.Name)]; !ok {
				continue
			}
			m.record(report, m.backfill(db, t, c))
		}
	}

	if m.managesClientTables() {
		m.assignClientKeys(db, report)
	}

	failed := len(report.Failed())
	if failed > 0 {
		m.log.Warn("schema evolution completed with failures",
			logger.Int("statements", len(report.Results)),
			logger.Int("failed", failed))
	} else {
		m.log.Info("schema evolution completed",
			logger.Int("statements", len(report.Results)))
	}
	return report
}

func (m *Manager) record(report *Report, res StepResult) {
	report.add(res)
	if res.Err == nil {
		return
	}
	m.log.Warn("schema evolution step failed",
		logger.String("step", res.Step),
		logger.String("table", res.Table),
		logger.String("column", res.Column),
		logger.Error(res.Err))
	if m.recorder != nil {
		m.recorder.SchemaStepFailed(res.Step)
	}
	if m.reporter != nil {
		m.reporter.CaptureError(errors.New(res.Err).
			Component("schema").
			Category(errors.CategorySchemaEvolution).
			Context("table", res.Table).
			Context("column", res.Column).
			Build(), map[string]string{"step": res.Step})
	}
}

// ensureTable creates t when it does not exist. ran is false when the table
// was already present.
func (m *Manager) ensureTable(db *gorm.DB, t Table) (res StepResult, ran bool) {
	if db.Migrator().HasTable(t.Name) {
		return StepResult{}, false
	}
	err := db.Exec(createTableSQL(t, db.Dialector.Name())).Error
	return StepResult{Step: StepCreateTable, Table: t.Name, Err: err}, true
}

func createTableSQL(t Table, dialect string) string {
	defs := make([]string, 0, len(t.Baseline)+len(t.Added)+1)
	if dialect == dialectMySQL {
		defs = append(defs, "`id` INT AUTO_INCREMENT PRIMARY KEY")
	} else {
		defs = append(defs, "`id` INTEGER PRIMARY KEY AUTOINCREMENT")
	}
	for _, c := range t.Columns() {
		defs = append(defs, c.definition())
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoteIdent(t.Name), strings.Join(defs, ",\n\t"))
	if dialect == dialectMySQL {
		stmt += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return stmt
}

// columns returns the live columns of a table keyed by lower-case name.
func (m *Manager) columns(db *gorm.DB, table string) (map[string]gorm.ColumnType, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect columns of %s: %w", table, err)
	}
	out := make(map[string]gorm.ColumnType, len(types))
	for _, ct := range types {
		out[strings.ToLower(ct.Name())] = ct
	}
	return out, nil
}

func (m *Manager) addColumn(db *gorm.DB, t Table, c Column) StepResult {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quoteIdent(t.Name), c.definition())
	err := db.Exec(stmt).Error
	if err != nil && isDuplicateColumn(err) {
		// Another instance added it between inspection and ALTER.
		err = nil
	}
	return StepResult{Step: StepAddColumn, Table: t.Name, Column: c.Name, Err: err}
}

func isDuplicateColumn(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateColumn {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}

// alignColumns converts legacy integer columns that are now declared as
// strings and restores drifted column defaults. Only the column definition
// changes; stored values are kept.
func (m *Manager) alignColumns(db *gorm.DB, t Table, existing map[string]gorm.ColumnType, report *Report) {
	for _, c := range t.Columns() {
		ct := existing[strings.ToLower(c.Name)]
		if ct == nil || c.NotNull {
			continue
		}

		if c.IsVarchar() && isIntegerType(ct.DatabaseTypeName()) {
			stmt := fmt.Sprintf("ALTER TABLE %s MODIFY %s", quoteIdent(t.Name), c.definition())
			m.record(report, StepResult{Step: StepRetypeColumn, Table: t.Name, Column: c.Name, Err: db.Exec(stmt).Error})
			continue
		}

		if !c.HasDefault() || c.IsText() {
			continue
		}
		if live, ok := ct.DefaultValue(); ok && live == unquote(c.Default) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", quoteIdent(t.Name), quoteIdent(c.Name), c.Default)
		m.record(report, StepResult{Step: StepAlignDefault, Table: t.Name, Column: c.Name, Err: db.Exec(stmt).Error})
	}
}

func isIntegerType(name string) bool {
	return strings.Contains(strings.ToLower(name), "int")
}

// backfill writes the documented default into NULL cells, and into empty
// cells for columns flagged BackfillEmpty.
func (m *Manager) backfill(db *gorm.DB, t Table, c Column) StepResult {
	col := quoteIdent(c.Name)
	cond := col + " IS NULL"
	if c.BackfillEmpty {
		cond = fmt.Sprintf("(%s IS NULL OR %s = '')", col, col)
	}
	res := db.Table(t.Name).Where(cond).Update(c.Name, c.DefaultValue())
	return StepResult{Step: StepBackfill, Table: t.Name, Column: c.Name, Rows: res.RowsAffected, Err: res.Error}
}

func (m *Manager) managesClientTables() bool {
	want := map[string]bool{
		entities.TableClientAppDetails:   false,
		entities.TableClientDetails:      false,
		entities.TableNotificationConfig: false,
	}
	for _, t := range m.tables {
		if _, ok := want[t.Name]; ok {
			want[t.Name] = true
		}
	}
	for _, seen := range want {
		if !seen {
			return false
		}
	}
	return true
}

// assignClientKeys gives every app details row without a surrogate key a new
// one, then copies it onto key-less companion rows with the same client name.
func (m *Manager) assignClientKeys(db *gorm.DB, report *Report) {
	var ids []uint
	err := db.Table(entities.TableClientAppDetails).
		Where("`clientKey` IS NULL OR `clientKey` = ''").
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		m.record(report, StepResult{Step: StepAssignKeys, Table: entities.TableClientAppDetails, Err: err})
		return
	}

	for _, id := range ids {
		res := db.Table(entities.TableClientAppDetails).Where("id = ?", id).Update("clientKey", m.newKey())
		m.record(report, StepResult{
			Step:  StepAssignKeys,
			Table: entities.TableClientAppDetails,
			Rows:  res.RowsAffected,
			Err:   res.Error,
		})
	}

	for _, companion := range []string{entities.TableClientDetails, entities.TableNotificationConfig} {
		res := db.Exec(adoptKeysSQL(companion))
		m.record(report, StepResult{Step: StepAdoptKeys, Table: companion, Rows: res.RowsAffected, Err: res.Error})
	}
}

// adoptKeysSQL copies the key of the newest app details row with the same
// client name onto key-less rows of a companion table.
func adoptKeysSQL(companion string) string {
	return fmt.Sprintf(
		"UPDATE %[1]s SET `clientKey` = ("+
			"SELECT a.`clientKey` FROM %[2]s a WHERE a.`clientName` = %[1]s.`clientName` ORDER BY a.`id` DESC LIMIT 1"+
			") WHERE (%[1]s.`clientKey` IS NULL OR %[1]s.`clientKey` = '') "+
			"AND EXISTS (SELECT 1 FROM %[2]s a WHERE a.`clientName` = %[1]s.`clientName`)",
		quoteIdent(companion), quoteIdent(entities.TableClientAppDetails))
}
