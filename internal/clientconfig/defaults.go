package clientconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zancompute/zanconfig/internal/datastore/entities"
)

// Documented fallback values shared by the resolver and the defaults groups.
const (
	DefaultLanguage            = "English"
	DefaultLanguageList        = "English,German,Dutch"
	DefaultDisplayLanguageList = "English"
	DefaultWelcomeBody         = "WELCOME TO SEE MORE"

	DefaultHeaderLogo    = "https://zanelbapp.zancompute.com:82/ClientLogos/ANALYTICSPRD/ISS4.png"
	DefaultPoweredByLogo = "https://zanelbapp.zancompute.com:82/ClientLogos/ANALYTICSPRD/Kiosk-Powered-by-1.png"
	DefaultProductLogo   = "https://gcp-image.zancompute.com/ClientLogos/ANALYTICSPRD/Bobrick-BG-Ori.png"
)

// DefaultAppDetails returns the branding defaults for a new client.
func DefaultAppDetails() entities.ClientAppDetails {
	return entities.ClientAppDetails{
		DefaultLanguage:        DefaultLanguage,
		ListOfLanguage:         DefaultLanguageList,
		DefaultDisplayLanguage: DefaultLanguage,
		ListOfDisplayLanguage:  DefaultDisplayLanguageList,
		HeaderLogo:             DefaultHeaderLogo,
		PoweredByLogo:          DefaultPoweredByLogo,
		ProductLogo:            DefaultProductLogo,
		MenuColor:              "#141b4d",
		SubMenuColor:           "272f69",
		TextColor:              "#3d86ea",
		HomeBgColor:            "#f1fdff",
		HeaderText:             "Zanitor",
		WelcomeText:            "Welcome To Zanitor",
		WelcomeBody:            DefaultWelcomeBody,
	}
}

// DefaultClientDetails returns the operating defaults for a new client.
func DefaultClientDetails() entities.ClientDetails {
	return entities.ClientDetails{
		MedianFlag:            0,
		StateMaintainHours:    24,
		RecentAlertHours:      6,
		NotificationListHours: 24,
		AppViewType:           1,

		TrashEnabled:                    true,
		PaperEnabled:                    true,
		HvacEnabled:                     false,
		WaterFlowEnabled:                true,
		FeedbackEnabled:                 true,
		AnalyticsWeekEndRestrictionFlag: true,
		TrafficSensor:                   "PeopleCount",

		SoapDispenserEnabled:    true,
		AirFreshenerEnabled:     false,
		CleanIndexEnabled:       true,
		HeatMapEnabled:          false,
		SchedulerEnabled:        false,
		PeopleCountEnabled:      true,
		SoapPredictionIsEnabled: false,
		WeatherEnabled:          false,
		TypicalHighValue:        5,
		CleaningThreshold:       50,
		FeedbackAlertConfig:     "0,1",
		BeaconTimeInterval:      2,
		SoapShots:               1000,
		PumpPercentage:          75,
		LabelFlag:               "3",
		Language:                DefaultLanguage,

		OccupancyDurationLimit:   10,
		PasswordRotationInterval: 0,
		MfaFlag:                  0,
		PageReloadInterval:       60,
		InspectionType:           1,
		DefaultGradingFlag:       1,
		CommentsLimit:            100,
		JanitorScheduleFlag:      0,
		PublisherType:            "mqtt",
		FeedbackType:             2,
		FeedbackAlertOrder:       4,
		FeedbackDefaultTimeout:   20,
		OverViewStartTime:        "12:00 AM",
		CannedChartPeriod:        60,
	}
}

// DefaultNotificationConfig returns the alerting defaults for a new client.
func DefaultNotificationConfig() entities.NotificationConfig {
	return entities.NotificationConfig{
		Push:                     true,
		TimeRestriction:          "11:59 PM-12:01 AM",
		JanitorIssueInterval:     "0,1",
		MaintenanceIssueInterval: "0,1",
		FeedbackFilterCount:      4,
		DeviceEmailFlag:          "0,0",
		FeedbackCombinedFlag:     true,
		FeedbackEmailFlag:        "0,0",
		QRJanitorPush:            true,
		OpenAreaTrafficFlag:      3,
		CleaningScheduleFlag:     false,
		TrafficAlert:             true,

		DeviceDataTimeInterval: "45",
		ToiletPaperThreshold:   "15",
		PaperTowelThreshold:    "15",
		TrashThreshold:         "75",
		AreaAlertThreshold:     "0",
	}
}

// DefaultsGroups is the payload a creation form is pre-populated from: one
// flat field-to-default mapping per record kind.
type DefaultsGroups struct {
	ClientDetails      map[string]any `json:"client_details"`
	ClientAppDetails   map[string]any `json:"client_appdetails"`
	NotificationConfig map[string]any `json:"notification_config"`
}

// Defaults builds the three defaults groups from the same values Resolve
// falls back to.
func Defaults() (DefaultsGroups, error) {
	details, err := flatten(DefaultClientDetails(), "id", "clientKey")
	if err != nil {
		return DefaultsGroups{}, err
	}
	app, err := flatten(DefaultAppDetails(), "id", "clientKey", "clientName")
	if err != nil {
		return DefaultsGroups{}, err
	}
	notif, err := flatten(DefaultNotificationConfig(), "id", "clientKey", "clientName")
	if err != nil {
		return DefaultsGroups{}, err
	}
	return DefaultsGroups{
		ClientDetails:      details,
		ClientAppDetails:   app,
		NotificationConfig: notif,
	}, nil
}

func flatten(v any, drop ...string) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode defaults: %w", err)
	}
	for _, k := range drop {
		delete(m, k)
	}
	return m, nil
}
