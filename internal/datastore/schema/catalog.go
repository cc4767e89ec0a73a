package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
)

// Column describes one column of a managed table.
type Column struct {
	Name string
	// Type is the portable SQL type, e.g. VARCHAR(45), INT or TEXT.
	Type string
	// Default is the SQL literal used in DDL and backfills. Empty means the
	// column has no documented default.
	Default string
	// BackfillEmpty also replaces empty strings during backfill. Set for TEXT
	// columns, which cannot carry a DEFAULT on older MySQL, and for columns
	// legacy code wrote as '' when the caller left them out.
	BackfillEmpty bool
	NotNull       bool
	Unique        bool
}

// HasDefault reports whether the column has a documented default.
func (c Column) HasDefault() bool { return c.Default != "" }

// IsText reports whether the column type is unbounded text.
func (c Column) IsText() bool { return strings.EqualFold(c.Type, "TEXT") }

// IsVarchar reports whether the column is declared as a bounded string.
func (c Column) IsVarchar() bool {
	return strings.HasPrefix(strings.ToUpper(c.Type), "VARCHAR")
}

// DefaultValue returns the default as a bind parameter value: an int for
// integer columns, the unquoted string otherwise.
func (c Column) DefaultValue() any {
	if n, err := strconv.Atoi(c.Default); err == nil && !c.IsVarchar() && !c.IsText() {
		return n
	}
	return unquote(c.Default)
}

// definition renders the column clause used by CREATE TABLE and ADD COLUMN.
// TEXT columns never get a DEFAULT clause.
func (c Column) definition() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", quoteIdent(c.Name), c.Type)
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if c.HasDefault() && !c.IsText() {
		fmt.Fprintf(&b, " DEFAULT %s", c.Default)
	}
	return b.String()
}

// Table is a managed table: the legacy baseline columns plus the columns
// introduced since, which are added to existing tables when missing.
type Table struct {
	Name     string
	Baseline []Column
	Added    []Column
}

// Columns returns the baseline followed by the added columns.
func (t Table) Columns() []Column {
	out := make([]Column, 0, len(t.Baseline)+len(t.Added))
	out = append(out, t.Baseline...)
	return append(out, t.Added...)
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns() {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

func varchar(name string, size int, def ...string) Column {
	c := Column{Name: name, Type: fmt.Sprintf("VARCHAR(%d)", size)}
	if len(def) > 0 {
		c.Default = quote(def[0])
	}
	return c
}

func integer(name string, def int) Column {
	return Column{Name: name, Type: "INT", Default: strconv.Itoa(def)}
}

func text(name, backfill string) Column {
	return Column{Name: name, Type: "TEXT", Default: quote(backfill), BackfillEmpty: true}
}

// list is a comma separated TEXT column. Writes never leave it NULL, so an
// empty string is a deliberately empty list and only NULL is backfilled.
func list(name, backfill string) Column {
	c := text(name, backfill)
	c.BackfillEmpty = false
	return c
}

func threshold(name string, size int, def string) Column {
	c := varchar(name, size, def)
	c.BackfillEmpty = true
	return c
}

func required(c Column) Column {
	c.NotNull = true
	return c
}

func unique(c Column) Column {
	c.Unique = true
	c.NotNull = true
	return c
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// quoteIdent wraps an identifier in backticks. SQLite accepts backticks as
// well, so the same DDL serves both dialects.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// clientKeyColumn is the surrogate key shared by a client's three rows.
var clientKeyColumn = varchar("clientKey", 36)

// Catalog returns the managed tables in creation order.
func Catalog() []Table {
	return []Table{
		{
			Name: entities.TableClientAppDetails,
			Baseline: []Column{
				required(varchar("clientName", 255)),
				varchar("defaultLanguage", 50, "English"),
				list("listOfLanguage", "English,German,Dutch"),
				varchar("defaultDisplayLanguage", 50, "English"),
				list("listOfDisplayLanguage", "English"),
				varchar("headerLogo", 255),
				varchar("poweredByLogo", 255),
				varchar("menuColor", 50, "#141b4d"),
				varchar("subMenuColor", 50, "272f69"),
				varchar("textColor", 50, "#3d86ea"),
				varchar("mobileHeaderColor", 50),
				varchar("mobileMenuBgColor", 50),
				varchar("headerText", 255, "Zanitor"),
				varchar("welcomeText", 255, "Welcome To Zanitor"),
				text("welcomeBody", "WELCOME TO SEE MORE"),
				varchar("productLogo", 255),
				varchar("homeBgColor", 50),
				varchar("homeLauncherLogo", 255),
			},
			Added: []Column{
				varchar("footerLogo", 255),
				clientKeyColumn,
			},
		},
		{
			Name: entities.TableClientDetails,
			Baseline: []Column{
				required(varchar("clientName", 255)),
				varchar("baseClient", 100),
				varchar("dbName", 100),
				integer("medianFlag", 0),
				integer("stateMaintainHours", 24),
				integer("recentAlertHours", 6),
				integer("notificationListHours", 24),
				varchar("trashEnabled", 45, entities.FlagTrue),
				varchar("paperEnabled", 45, entities.FlagTrue),
				varchar("hvacEnabled", 45, entities.FlagFalse),
				varchar("waterFlowEnabled", 45, entities.FlagTrue),
				varchar("feedbackEnabled", 45, entities.FlagTrue),
			},
			Added: []Column{
				varchar("analyticsWeekEndRestrictionFlag", 45, entities.FlagTrue),
				varchar("trafficSensor", 45, "PeopleCount"),
				integer("appViewType", 1),
				varchar("soapDispenserEnabled", 45, entities.FlagTrue),
				varchar("airFreshenerEnabled", 45, entities.FlagFalse),
				varchar("cleanIndexEnabled", 45, entities.FlagTrue),
				varchar("heatMapEnabled", 45, entities.FlagFalse),
				varchar("schedulerEnabled", 45, entities.FlagFalse),
				varchar("peopleCountEnabled", 45, entities.FlagTrue),
				integer("typicalHighValue", 5),
				integer("cleaningThreshold", 50),
				varchar("feedbackAlertConfig", 45, "0,1"),
				integer("beaconTimeInterval", 2),
				integer("soapShots", 1000),
				integer("pumpPercentage", 75),
				varchar("soapPredictionIsEnabled", 45, entities.FlagFalse),
				varchar("labelFlag", 45, "3"),
				varchar("weatherEnabled", 45, entities.FlagFalse),
				varchar("language", 45, "English"),
				integer("occupancyDurationLimit", 10),
				integer("passwordRotationInterval", 0),
				integer("mfaFlag", 0),
				integer("pageReloadInterval", 60),
				integer("inspectionType", 1),
				integer("defaultGradingflag", 1),
				integer("commentsLimit", 100),
				integer("janitorScheduleFlag", 0),
				varchar("publisherType", 45, "mqtt"),
				varchar("availableSensors", 255, ""),
				integer("feedbackType", 2),
				integer("feedbackAlertOrder", 4),
				integer("feedbackDefaultTimeout", 20),
				varchar("overViewStartTime", 20, "12:00 AM"),
				integer("cannedChartPeriod", 60),
				varchar("dataPostingType", 45, ""),
				clientKeyColumn,
			},
		},
		{
			Name: entities.TableNotificationConfig,
			Baseline: []Column{
				required(varchar("clientName", 255)),
				varchar("push", 10, entities.FlagTrue),
				varchar("timeRestriction", 50, "11:59 PM-12:01 AM"),
				integer("weekendRestriction", 0),
				integer("alertInterval", 0),
				varchar("janitorIssueInterval", 10, "0,1"),
				varchar("maintenanceIssueInterval", 10, "0,1"),
				integer("feedbackDuplicateFilterInterval", 0),
				integer("feedbackFilterCount", 4),
				varchar("deviceEmailFlag", 10, "0,0"),
				varchar("feedbackCombinedFlag", 10, entities.FlagTrue),
				varchar("feedbackEmailFlag", 10, "0,0"),
				integer("feedbackTextFlag", 0),
			},
			Added: []Column{
				integer("deviceTextFlag", 0),
				varchar("qrJanitorpush", 10, entities.FlagTrue),
				integer("qrJanitorTextFlag", 0),
				integer("qrJanitorEmailFlag", 0),
				integer("openAreaTrafficFlag", 3),
				integer("escalationType", 0),
				integer("escalationLevel1Interval", 0),
				integer("escalationLevel2Interval", 0),
				integer("notCleanEscalationInterval", 0),
				varchar("cleaningScheduleFlag", 10, entities.FlagFalse),
				threshold("deviceDataTimeInterval", 500, "45"),
				threshold("toiletPaperThreshold", 400, "15"),
				threshold("paperTowelThreshold", 200, "15"),
				threshold("trashThreshold", 400, "75"),
				threshold("areaAlertThreshold", 300, "0"),
				varchar("trafficAlert", 10, entities.FlagTrue),
				integer("dispatchedInterval", 0),
				clientKeyColumn,
			},
		},
		{
			Name: entities.TableUsers,
			Baseline: []Column{
				unique(varchar("username", 255)),
				unique(varchar("email", 255)),
				required(varchar("password_hash", 255)),
			},
		},
	}
}
