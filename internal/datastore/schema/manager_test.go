package schema

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/logger"
	"github.com/zancompute/zanconfig/internal/testutil"
)

func setupSchemaTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

func testLogger() logger.Logger {
	return testutil.DiscardLogger()
}

type countingRecorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *countingRecorder) SchemaStepFailed(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

type capturedError struct {
	err  error
	tags map[string]string
}

type capturingReporter struct {
	mu       sync.Mutex
	captured []capturedError
}

func (r *capturingReporter) CaptureError(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captured = append(r.captured, capturedError{err: err, tags: tags})
}

func columnNames(t *testing.T, db *gorm.DB, table string) map[string]bool {
	t.Helper()
	types, err := db.Migrator().ColumnTypes(table)
	require.NoError(t, err)
	out := make(map[string]bool, len(types))
	for _, ct := range types {
		out[ct.Name()] = true
	}
	return out
}

func TestManager_FreshDatabase(t *testing.T) {
	db := setupSchemaTestDB(t)
	m := NewManager(db, testLogger())

	report := m.Run(t.Context())
	require.NoError(t, report.Err())
	assert.Empty(t, report.Failed())
	assert.Equal(t, 4, report.Applied(StepCreateTable))
	assert.Zero(t, report.Applied(StepAddColumn), "fresh tables are created with every column")

	for _, table := range Catalog() {
		cols := columnNames(t, db, table.Name)
		assert.True(t, cols["id"], "%s.id", table.Name)
		for _, c := range table.Columns() {
			assert.True(t, cols[c.Name], "%s.%s missing", table.Name, c.Name)
		}
	}
}

func TestManager_RunTwiceIsIdempotent(t *testing.T) {
	db := setupSchemaTestDB(t)
	m := NewManager(db, testLogger())

	first := m.Run(t.Context())
	require.Empty(t, first.Failed())

	before := map[string]int{}
	for _, table := range Catalog() {
		before[table.Name] = len(columnNames(t, db, table.Name))
	}

	second := m.Run(t.Context())
	require.NoError(t, second.Err())
	assert.Empty(t, second.Failed())
	assert.Zero(t, second.Applied(StepCreateTable))
	assert.Zero(t, second.Applied(StepAddColumn))
	assert.Zero(t, second.RowsTouched(StepBackfill))

	for _, table := range Catalog() {
		assert.Len(t, columnNames(t, db, table.Name), before[table.Name], "no duplicate columns in %s", table.Name)
	}
}

// legacyDDL mirrors the tables created by the first dashboard backend.
var legacyDDL = []string{
	`CREATE TABLE clientappdetails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		clientName VARCHAR(255) NOT NULL,
		defaultLanguage VARCHAR(50),
		listOfLanguage TEXT,
		defaultDisplayLanguage VARCHAR(50),
		listOfDisplayLanguage TEXT,
		headerLogo VARCHAR(255),
		poweredByLogo VARCHAR(255),
		menuColor VARCHAR(50),
		subMenuColor VARCHAR(50),
		textColor VARCHAR(50),
		mobileHeaderColor VARCHAR(50),
		mobileMenuBgColor VARCHAR(50),
		headerText VARCHAR(255),
		welcomeText VARCHAR(255),
		welcomeBody TEXT,
		alert VARCHAR(255),
		productLogo VARCHAR(255),
		homeBgColor VARCHAR(50),
		homeLauncherLogo VARCHAR(255)
	)`,
	`CREATE TABLE client_details (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		clientName VARCHAR(255) NOT NULL,
		baseClient VARCHAR(100),
		dbName VARCHAR(100),
		medianFlag INT DEFAULT 0,
		stateMaintainHours INT DEFAULT 0,
		recentAlertHours INT DEFAULT 0,
		notificationListHours INT DEFAULT 0,
		trashEnabled VARCHAR(45) DEFAULT '0',
		paperEnabled VARCHAR(45) DEFAULT '0',
		hvacEnabled VARCHAR(45) DEFAULT '0',
		waterFlowEnabled VARCHAR(45) DEFAULT '0',
		feedbackEnabled VARCHAR(45) DEFAULT '0'
	)`,
	`CREATE TABLE notificationconfiguration (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		clientName VARCHAR(255) NOT NULL,
		push VARCHAR(45) DEFAULT '0',
		timeRestriction VARCHAR(50),
		weekendRestriction INT DEFAULT 0,
		alertInterval INT DEFAULT 0,
		janitorIssueInterval VARCHAR(10),
		maintenanceIssueInterval VARCHAR(10),
		feedbackDuplicateFilterInterval INT DEFAULT 0,
		feedbackFilterCount INT DEFAULT 0,
		deviceEmailFlag VARCHAR(45) DEFAULT '0',
		feedbackCombinedFlag VARCHAR(45) DEFAULT '0',
		feedbackEmailFlag VARCHAR(45) DEFAULT '0',
		feedbackTextFlag INT DEFAULT 0
	)`,
}

func TestManager_EvolvesLegacyTables(t *testing.T) {
	db := setupSchemaTestDB(t)
	for _, stmt := range legacyDDL {
		require.NoError(t, db.Exec(stmt).Error)
	}
	require.NoError(t, db.Exec(
		"INSERT INTO clientappdetails (clientName, menuColor, welcomeBody, listOfLanguage) VALUES (?, ?, ?, ?)",
		"PHL", "#000000", "", nil).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO client_details (clientName, dbName, stateMaintainHours) VALUES (?, ?, ?)",
		"PHL", "phl", 12).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO notificationconfiguration (clientName, push) VALUES (?, ?)",
		"PHL", "True").Error)
	require.NoError(t, db.Exec(
		"INSERT INTO notificationconfiguration (clientName, push) VALUES (?, ?)",
		"ORPHAN", "False").Error)

	m := NewManager(db, testLogger())
	report := m.Run(t.Context())
	require.NoError(t, report.Err())

	assert.Equal(t, 1, report.Applied(StepCreateTable), "only users is new")
	assert.Positive(t, report.Applied(StepAddColumn))

	cols := columnNames(t, db, entities.TableClientAppDetails)
	assert.True(t, cols["footerLogo"])
	assert.True(t, cols["clientKey"])
	assert.True(t, cols["alert"], "unknown legacy columns are left alone")

	var app struct {
		MenuColor      string `gorm:"column:menuColor"`
		WelcomeBody    string `gorm:"column:welcomeBody"`
		ListOfLanguage string `gorm:"column:listOfLanguage"`
		ClientKey      string `gorm:"column:clientKey"`
	}
	require.NoError(t, db.Table(entities.TableClientAppDetails).Where("clientName = ?", "PHL").Take(&app).Error)
	assert.Equal(t, "#000000", app.MenuColor, "existing data is never overwritten")
	assert.Equal(t, "WELCOME TO SEE MORE", app.WelcomeBody, "empty text backfilled")
	assert.Equal(t, "English,German,Dutch", app.ListOfLanguage, "null text backfilled")
	require.NotEmpty(t, app.ClientKey)

	var details struct {
		StateMaintainHours int    `gorm:"column:stateMaintainHours"`
		MfaFlag            int    `gorm:"column:mfaFlag"`
		CommentsLimit      int    `gorm:"column:commentsLimit"`
		ClientKey          string `gorm:"column:clientKey"`
	}
	require.NoError(t, db.Table(entities.TableClientDetails).Where("clientName = ?", "PHL").Take(&details).Error)
	assert.Equal(t, 12, details.StateMaintainHours)
	assert.Equal(t, 0, details.MfaFlag)
	assert.Equal(t, 100, details.CommentsLimit, "added column takes its default")
	assert.Equal(t, app.ClientKey, details.ClientKey, "companion adopts the key of its client")

	var notif struct {
		TrashThreshold string  `gorm:"column:trashThreshold"`
		ClientKey      *string `gorm:"column:clientKey"`
	}
	require.NoError(t, db.Table(entities.TableNotificationConfig).Where("clientName = ?", "PHL").Take(&notif).Error)
	assert.Equal(t, "75", notif.TrashThreshold)
	require.NotNil(t, notif.ClientKey)
	assert.Equal(t, app.ClientKey, *notif.ClientKey)

	var orphan struct {
		ClientKey *string `gorm:"column:clientKey"`
	}
	require.NoError(t, db.Table(entities.TableNotificationConfig).Where("clientName = ?", "ORPHAN").Take(&orphan).Error)
	assert.Nil(t, orphan.ClientKey, "rows without a client keep no key")

	again := m.Run(t.Context())
	assert.Empty(t, again.Failed())
	assert.Zero(t, again.Applied(StepAssignKeys))
}

func TestManager_KeepsEmptyLanguageLists(t *testing.T) {
	db := setupSchemaTestDB(t)
	m := NewManager(db, testLogger())
	require.NoError(t, m.Run(t.Context()).Err())

	require.NoError(t, db.Exec(
		"INSERT INTO clientappdetails (clientName, listOfLanguage, listOfDisplayLanguage, welcomeBody, clientKey) VALUES (?, ?, ?, ?, ?)",
		"Acme", "", "", "", "k-acme").Error)

	for range 2 {
		require.NoError(t, m.Run(t.Context()).Err())
	}

	var app struct {
		ListOfLanguage        string `gorm:"column:listOfLanguage"`
		ListOfDisplayLanguage string `gorm:"column:listOfDisplayLanguage"`
		WelcomeBody           string `gorm:"column:welcomeBody"`
	}
	require.NoError(t, db.Table(entities.TableClientAppDetails).Where("clientName = ?", "Acme").Take(&app).Error)
	assert.Empty(t, app.ListOfLanguage)
	assert.Empty(t, app.ListOfDisplayLanguage)
	assert.Equal(t, "WELCOME TO SEE MORE", app.WelcomeBody, "other text columns still backfill empties")
}

func TestManager_FailuresAreRecordedNotFatal(t *testing.T) {
	db := setupSchemaTestDB(t)
	rec := &countingRecorder{}
	reporter := &capturingReporter{}

	tables := []Table{{
		Name:     "widgets",
		Baseline: []Column{required(varchar("name", 50))},
	}}
	m := NewManager(db, testLogger(), WithTables(tables), WithRecorder(rec))
	require.Empty(t, m.Run(t.Context()).Failed())

	tables[0].Added = []Column{
		{Name: "broken", Type: "INT DEFAULT"},
		integer("size", 3),
	}
	m = NewManager(db, testLogger(), WithTables(tables), WithRecorder(rec), WithErrorReporter(reporter))

	var report *Report
	require.NotPanics(t, func() { report = m.Run(t.Context()) })

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, StepAddColumn, failed[0].Step)
	assert.Equal(t, "broken", failed[0].Column)
	require.Error(t, report.Err())
	assert.Equal(t, []string{StepAddColumn}, rec.steps)

	require.Len(t, reporter.captured, 1)
	assert.Equal(t, StepAddColumn, reporter.captured[0].tags["step"])
	assert.Equal(t, errors.CategorySchemaEvolution, errors.CategoryOf(reporter.captured[0].err))
	var ee *errors.EnhancedError
	require.ErrorAs(t, reporter.captured[0].err, &ee)
	assert.Equal(t, "broken", ee.Context()["column"])

	assert.True(t, columnNames(t, db, "widgets")["size"], "later columns still applied")
}

func TestIsDuplicateColumn(t *testing.T) {
	t.Parallel()

	assert.True(t, isDuplicateColumn(&mysql.MySQLError{Number: 1060, Message: "Duplicate column name 'mfaFlag'"}))
	assert.True(t, isDuplicateColumn(fmt.Errorf("exec: %w", fmt.Errorf("duplicate column name: mfaFlag"))))
	assert.False(t, isDuplicateColumn(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}))
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	table := Table{
		Name:     "clientappdetails",
		Baseline: []Column{required(varchar("clientName", 255)), text("welcomeBody", "hi")},
		Added:    []Column{integer("mfaFlag", 0), varchar("menuColor", 50, "#141b4d")},
	}

	mysqlDDL := createTableSQL(table, "mysql")
	assert.Contains(t, mysqlDDL, "`id` INT AUTO_INCREMENT PRIMARY KEY")
	assert.Contains(t, mysqlDDL, "`clientName` VARCHAR(255) NOT NULL")
	assert.Contains(t, mysqlDDL, "`welcomeBody` TEXT,")
	assert.NotContains(t, mysqlDDL, "'hi'", "TEXT columns carry no DEFAULT")
	assert.Contains(t, mysqlDDL, "`mfaFlag` INT DEFAULT 0")
	assert.Contains(t, mysqlDDL, "`menuColor` VARCHAR(50) DEFAULT '#141b4d'")
	assert.True(t, strings.HasSuffix(mysqlDDL, "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"))

	sqliteDDL := createTableSQL(table, "sqlite")
	assert.Contains(t, sqliteDDL, "`id` INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.NotContains(t, sqliteDDL, "ENGINE")
}

func TestColumn_DefaultValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 24, integer("stateMaintainHours", 24).DefaultValue())
	assert.Equal(t, "3", varchar("labelFlag", 45, "3").DefaultValue())
	assert.Equal(t, "it's", varchar("quoted", 10, "it's").DefaultValue())
	assert.Equal(t, "English,German,Dutch", text("listOfLanguage", "English,German,Dutch").DefaultValue())
}
