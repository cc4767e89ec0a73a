package clientconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
)

const componentName = "clientconfig"

// Payload is a decoded client configuration request body keyed by the
// legacy camelCase field names.
type Payload map[string]any

// DecodePayload reads a JSON object, keeping numbers as json.Number so large
// or integral values survive unchanged.
func DecodePayload(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Newf("invalid request body: %v", err).
			Component(componentName).
			Category(errors.CategoryValidation).
			Build()
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// Resolve maps a partial payload to a complete record set. A field that is
// absent, null or the empty string takes its documented default; any other
// value is kept as given, including numeric zero, False and an explicit
// empty language list. The returned records carry the trimmed client name
// but no surrogate key.
func Resolve(p Payload) (entities.ClientConfig, error) {
	r := &resolver{p: p}

	name := strings.TrimSpace(r.str("clientName", ""))
	if name == "" {
		return entities.ClientConfig{}, errors.Validation(componentName, "clientName is required")
	}

	app := DefaultAppDetails()
	app.DefaultLanguage = r.str("defaultLanguage", app.DefaultLanguage)
	app.ListOfLanguage = r.list("listOfLanguage", app.ListOfLanguage)
	app.DefaultDisplayLanguage = r.str("defaultDisplayLanguage", app.DefaultDisplayLanguage)
	app.ListOfDisplayLanguage = r.list("listOfDisplayLanguage", app.ListOfDisplayLanguage)
	app.HeaderLogo = r.str("headerLogo", app.HeaderLogo)
	app.FooterLogo = r.str("footerLogo", app.FooterLogo)
	app.PoweredByLogo = r.str("poweredByLogo", app.PoweredByLogo)
	app.ProductLogo = r.str("productLogo", app.ProductLogo)
	app.HomeLauncherLogo = r.str("homeLauncherLogo", app.HomeLauncherLogo)
	app.MenuColor = r.str("menuColor", app.MenuColor)
	app.SubMenuColor = r.str("subMenuColor", app.SubMenuColor)
	app.TextColor = r.str("textColor", app.TextColor)
	app.MobileHeaderColor = r.str("mobileHeaderColor", app.MobileHeaderColor)
	app.MobileMenuBgColor = r.str("mobileMenuBgColor", app.MobileMenuBgColor)
	app.HomeBgColor = r.str("homeBgColor", app.HomeBgColor)
	app.HeaderText = r.str("headerText", app.HeaderText)
	app.WelcomeText = r.str("welcomeText", app.WelcomeText)
	app.WelcomeBody = r.str("welcomeBody", app.WelcomeBody)

	op := DefaultClientDetails()
	op.BaseClient = strings.TrimSpace(r.str("baseClient", ""))
	op.DBName = strings.TrimSpace(r.str("dbName", ""))
	if op.DBName == "" {
		op.DBName = op.BaseClient
	}
	op.MedianFlag = r.int("medianFlag", op.MedianFlag)
	op.StateMaintainHours = r.int("stateMaintainHours", op.StateMaintainHours)
	op.RecentAlertHours = r.int("recentAlertHours", op.RecentAlertHours)
	op.NotificationListHours = r.int("notificationListHours", op.NotificationListHours)
	op.AppViewType = r.int("appViewType", op.AppViewType)
	op.TrashEnabled = r.flag("trashEnabled", op.TrashEnabled)
	op.PaperEnabled = r.flag("paperEnabled", op.PaperEnabled)
	op.HvacEnabled = r.flag("hvacEnabled", op.HvacEnabled)
	op.WaterFlowEnabled = r.flag("waterFlowEnabled", op.WaterFlowEnabled)
	op.FeedbackEnabled = r.flag("feedbackEnabled", op.FeedbackEnabled)
	op.AnalyticsWeekEndRestrictionFlag = r.flag("analyticsWeekEndRestrictionFlag", op.AnalyticsWeekEndRestrictionFlag)
	op.TrafficSensor = r.str("trafficSensor", op.TrafficSensor)
	op.SoapDispenserEnabled = r.flag("soapDispenserEnabled", op.SoapDispenserEnabled)
	op.AirFreshenerEnabled = r.flag("airFreshenerEnabled", op.AirFreshenerEnabled)
	op.CleanIndexEnabled = r.flag("cleanIndexEnabled", op.CleanIndexEnabled)
	op.HeatMapEnabled = r.flag("heatMapEnabled", op.HeatMapEnabled)
	op.SchedulerEnabled = r.flag("schedulerEnabled", op.SchedulerEnabled)
	op.PeopleCountEnabled = r.flag("peopleCountEnabled", op.PeopleCountEnabled)
	op.SoapPredictionIsEnabled = r.flag("soapPredictionIsEnabled", op.SoapPredictionIsEnabled)
	op.WeatherEnabled = r.flag("weatherEnabled", op.WeatherEnabled)
	op.TypicalHighValue = r.int("typicalHighValue", op.TypicalHighValue)
	op.CleaningThreshold = r.int("cleaningThreshold", op.CleaningThreshold)
	op.FeedbackAlertConfig = r.str("feedbackAlertConfig", op.FeedbackAlertConfig)
	op.BeaconTimeInterval = r.int("beaconTimeInterval", op.BeaconTimeInterval)
	op.SoapShots = r.int("soapShots", op.SoapShots)
	op.PumpPercentage = r.int("pumpPercentage", op.PumpPercentage)
	op.LabelFlag = r.str("labelFlag", op.LabelFlag)
	op.Language = r.str("language", op.Language)
	op.OccupancyDurationLimit = r.int("occupancyDurationLimit", op.OccupancyDurationLimit)
	op.PasswordRotationInterval = r.int("passwordRotationInterval", op.PasswordRotationInterval)
	op.MfaFlag = r.int("mfaFlag", op.MfaFlag)
	op.PageReloadInterval = r.int("pageReloadInterval", op.PageReloadInterval)
	op.InspectionType = r.int("inspectionType", op.InspectionType)
	op.DefaultGradingFlag = r.int("defaultGradingflag", op.DefaultGradingFlag)
	op.CommentsLimit = r.int("commentsLimit", op.CommentsLimit)
	op.JanitorScheduleFlag = r.int("janitorScheduleFlag", op.JanitorScheduleFlag)
	op.PublisherType = r.str("publisherType", op.PublisherType)
	op.AvailableSensors = r.str("availableSensors", op.AvailableSensors)
	op.FeedbackType = r.int("feedbackType", op.FeedbackType)
	op.FeedbackAlertOrder = r.int("feedbackAlertOrder", op.FeedbackAlertOrder)
	op.FeedbackDefaultTimeout = r.int("feedbackDefaultTimeout", op.FeedbackDefaultTimeout)
	op.OverViewStartTime = r.str("overViewStartTime", op.OverViewStartTime)
	op.CannedChartPeriod = r.int("cannedChartPeriod", op.CannedChartPeriod)
	op.DataPostingType = r.str("dataPostingType", op.DataPostingType)

	n := DefaultNotificationConfig()
	n.Push = r.flag("push", n.Push)
	n.TimeRestriction = r.str("timeRestriction", n.TimeRestriction)
	n.WeekendRestriction = r.int("weekendRestriction", n.WeekendRestriction)
	n.AlertInterval = r.int("alertInterval", n.AlertInterval)
	n.JanitorIssueInterval = r.str("janitorIssueInterval", n.JanitorIssueInterval)
	n.MaintenanceIssueInterval = r.str("maintenanceIssueInterval", n.MaintenanceIssueInterval)
	n.FeedbackDuplicateFilterInterval = r.int("feedbackDuplicateFilterInterval", n.FeedbackDuplicateFilterInterval)
	n.FeedbackFilterCount = r.int("feedbackFilterCount", n.FeedbackFilterCount)
	n.DeviceEmailFlag = r.str("deviceEmailFlag", n.DeviceEmailFlag)
	n.FeedbackCombinedFlag = r.flag("feedbackCombinedFlag", n.FeedbackCombinedFlag)
	n.FeedbackEmailFlag = r.str("feedbackEmailFlag", n.FeedbackEmailFlag)
	n.FeedbackTextFlag = r.int("feedbackTextFlag", n.FeedbackTextFlag)
	n.DeviceTextFlag = r.int("deviceTextFlag", n.DeviceTextFlag)
	n.QRJanitorPush = r.flag("qrJanitorpush", n.QRJanitorPush)
	n.QRJanitorTextFlag = r.int("qrJanitorTextFlag", n.QRJanitorTextFlag)
	n.QRJanitorEmailFlag = r.int("qrJanitorEmailFlag", n.QRJanitorEmailFlag)
	n.OpenAreaTrafficFlag = r.int("openAreaTrafficFlag", n.OpenAreaTrafficFlag)
	n.EscalationType = r.int("escalationType", n.EscalationType)
	n.EscalationLevel1Interval = r.int("escalationLevel1Interval", n.EscalationLevel1Interval)
	n.EscalationLevel2Interval = r.int("escalationLevel2Interval", n.EscalationLevel2Interval)
	n.NotCleanEscalationInterval = r.int("notCleanEscalationInterval", n.NotCleanEscalationInterval)
	n.CleaningScheduleFlag = r.flag("cleaningScheduleFlag", n.CleaningScheduleFlag)
	n.TrafficAlert = r.flag("trafficAlert", n.TrafficAlert)
	n.DispatchedInterval = r.int("dispatchedInterval", n.DispatchedInterval)
	n.DeviceDataTimeInterval = r.str("deviceDataTimeInterval", n.DeviceDataTimeInterval)
	n.ToiletPaperThreshold = r.str("toiletPaperThreshold", n.ToiletPaperThreshold)
	n.PaperTowelThreshold = r.str("paperTowelThreshold", n.PaperTowelThreshold)
	n.TrashThreshold = r.str("trashThreshold", n.TrashThreshold)
	n.AreaAlertThreshold = r.str("areaAlertThreshold", n.AreaAlertThreshold)

	if len(r.problems) > 0 {
		return entities.ClientConfig{}, errors.Newf("invalid client configuration: %s", strings.Join(r.problems, "; ")).
			Component(componentName).
			Category(errors.CategoryValidation).
			Context("fields", len(r.problems)).
			Build()
	}

	cfg := entities.ClientConfig{App: app, Operating: op, Notification: n}
	cfg.SetIdentity(name, "")
	return cfg, nil
}

// resolver reads typed fields from a Payload and collects every malformed
// field instead of stopping at the first.
type resolver struct {
	p        Payload
	problems []string
}

func (r *resolver) fail(key string, format string, args ...any) {
	r.problems = append(r.problems, key+": "+fmt.Sprintf(format, args...))
}

// value returns the raw value for key unless it is absent, null or "".
func (r *resolver) value(key string) (any, bool) {
	v, ok := r.p[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && s == "" {
		return nil, false
	}
	return v, true
}

func (r *resolver) str(key, def string) string {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return entities.Flag(x).String()
	default:
		r.fail(key, "expected a string, got %T", v)
		return def
	}
}

func (r *resolver) int(key string, def int) int {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	n, present, err := toInt(v)
	if err != nil {
		r.fail(key, "%v", err)
		return def
	}
	if !present {
		return def
	}
	return n
}

// toInt accepts native numbers and numeric strings within the range of a
// MySQL INT column. A blank string reports present=false so it falls back
// like an absent field.
func toInt(v any) (n int, present bool, err error) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
		if s == "" {
			return 0, false, nil
		}
	case float64:
		if x != math.Trunc(x) {
			return 0, true, fmt.Errorf("expected a whole number, got %v", x)
		}
		return intInRange(x)
	case int:
		return intInRange(float64(x))
	case int64:
		return intInRange(float64(x))
	default:
		return 0, true, fmt.Errorf("expected a number, got %T", v)
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intInRange(float64(i))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, true, fmt.Errorf("expected a whole number, got %q", s)
	}
	return intInRange(f)
}

func intInRange(f float64) (int, bool, error) {
	if math.IsInf(f, 0) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, true, fmt.Errorf("%v is out of range", f)
	}
	return int(f), true, nil
}

func (r *resolver) flag(key string, def entities.Flag) entities.Flag {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	var s string
	switch x := v.(type) {
	case bool:
		return entities.Flag(x)
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	default:
		r.fail(key, "expected True or False, got %T", v)
		return def
	}
	f, err := entities.ParseFlag(s)
	if err != nil {
		r.fail(key, "%v", err)
		return def
	}
	return f
}

// list resolves a language list given either as a comma-joined string or as
// a JSON array. Entries are trimmed and de-duplicated in order. An explicit
// empty array is kept as an empty list.
func (r *resolver) list(key, def string) string {
	v, ok := r.p[key]
	if !ok || v == nil {
		return def
	}
	switch x := v.(type) {
	case string:
		joined := joinSet(strings.Split(x, ","))
		if joined == "" {
			return def
		}
		return joined
	case []string:
		return joinSet(x)
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, isString := item.(string)
			if !isString {
				r.fail(key, "list entries must be strings, got %T", item)
				return def
			}
			items = append(items, s)
		}
		return joinSet(items)
	default:
		r.fail(key, "expected a list or comma separated string, got %T", v)
		return def
	}
}

func joinSet(items []string) string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return strings.Join(out, ",")
}
