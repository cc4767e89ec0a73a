package entities

// ClientDetails is the operating configuration of a client's monitoring
// deployment: feature flags, polling intervals and thresholds, plus the
// baseClient/dbName pair naming the data schema it targets.
type ClientDetails struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	ClientName string `gorm:"column:clientName;size:255;not null" json:"clientName"`
	ClientKey  string `gorm:"column:clientKey;size:36" json:"clientKey"`
	BaseClient string `gorm:"column:baseClient;size:100" json:"baseClient"`
	DBName     string `gorm:"column:dbName;size:100" json:"dbName"`

	MedianFlag            int `gorm:"column:medianFlag" json:"medianFlag"`
	StateMaintainHours    int `gorm:"column:stateMaintainHours" json:"stateMaintainHours"`
	RecentAlertHours      int `gorm:"column:recentAlertHours" json:"recentAlertHours"`
	NotificationListHours int `gorm:"column:notificationListHours" json:"notificationListHours"`
	AppViewType           int `gorm:"column:appViewType" json:"appViewType"`

	TrashEnabled                    Flag   `gorm:"column:trashEnabled;size:45" json:"trashEnabled"`
	PaperEnabled                    Flag   `gorm:"column:paperEnabled;size:45" json:"paperEnabled"`
	HvacEnabled                     Flag   `gorm:"column:hvacEnabled;size:45" json:"hvacEnabled"`
	WaterFlowEnabled                Flag   `gorm:"column:waterFlowEnabled;size:45" json:"waterFlowEnabled"`
	FeedbackEnabled                 Flag   `gorm:"column:feedbackEnabled;size:45" json:"feedbackEnabled"`
	AnalyticsWeekEndRestrictionFlag Flag   `gorm:"column:analyticsWeekEndRestrictionFlag;size:45" json:"analyticsWeekEndRestrictionFlag"`
	TrafficSensor                   string `gorm:"column:trafficSensor;size:45" json:"trafficSensor"`

	SoapDispenserEnabled    Flag   `gorm:"column:soapDispenserEnabled;size:10" json:"soapDispenserEnabled"`
	AirFreshenerEnabled     Flag   `gorm:"column:airFreshenerEnabled;size:10" json:"airFreshenerEnabled"`
	CleanIndexEnabled       Flag   `gorm:"column:cleanIndexEnabled;size:10" json:"cleanIndexEnabled"`
	HeatMapEnabled          Flag   `gorm:"column:heatMapEnabled;size:10" json:"heatMapEnabled"`
	SchedulerEnabled        Flag   `gorm:"column:schedulerEnabled;size:10" json:"schedulerEnabled"`
	PeopleCountEnabled      Flag   `gorm:"column:peopleCountEnabled;size:10" json:"peopleCountEnabled"`
	SoapPredictionIsEnabled Flag   `gorm:"column:soapPredictionIsEnabled;size:10" json:"soapPredictionIsEnabled"`
	WeatherEnabled          Flag   `gorm:"column:weatherEnabled;size:10" json:"weatherEnabled"`
	TypicalHighValue        int    `gorm:"column:typicalHighValue" json:"typicalHighValue"`
	CleaningThreshold       int    `gorm:"column:cleaningThreshold" json:"cleaningThreshold"`
	FeedbackAlertConfig     string `gorm:"column:feedbackAlertConfig;size:20" json:"feedbackAlertConfig"`
	BeaconTimeInterval      int    `gorm:"column:beaconTimeInterval" json:"beaconTimeInterval"`
	SoapShots               int    `gorm:"column:soapShots" json:"soapShots"`
	PumpPercentage          int    `gorm:"column:pumpPercentage" json:"pumpPercentage"`
	LabelFlag               string `gorm:"column:labelFlag;size:10" json:"labelFlag"`
	Language                string `gorm:"column:language;size:50" json:"language"`

	OccupancyDurationLimit   int    `gorm:"column:occupancyDurationLimit" json:"occupancyDurationLimit"`
	PasswordRotationInterval int    `gorm:"column:passwordRotationInterval" json:"passwordRotationInterval"`
	MfaFlag                  int    `gorm:"column:mfaFlag" json:"mfaFlag"`
	PageReloadInterval       int    `gorm:"column:pageReloadInterval" json:"pageReloadInterval"`
	InspectionType           int    `gorm:"column:inspectionType" json:"inspectionType"`
	DefaultGradingFlag       int    `gorm:"column:defaultGradingflag" json:"defaultGradingflag"`
	CommentsLimit            int    `gorm:"column:commentsLimit" json:"commentsLimit"`
	JanitorScheduleFlag      int    `gorm:"column:janitorScheduleFlag" json:"janitorScheduleFlag"`
	PublisherType            string `gorm:"column:publisherType;size:20" json:"publisherType"`
	AvailableSensors         string `gorm:"column:availableSensors;size:255" json:"availableSensors"`
	FeedbackType             int    `gorm:"column:feedbackType" json:"feedbackType"`
	FeedbackAlertOrder       int    `gorm:"column:feedbackAlertOrder" json:"feedbackAlertOrder"`
	FeedbackDefaultTimeout   int    `gorm:"column:feedbackDefaultTimeout" json:"feedbackDefaultTimeout"`
	OverViewStartTime        string `gorm:"column:overViewStartTime;size:20" json:"overViewStartTime"`
	CannedChartPeriod        int    `gorm:"column:cannedChartPeriod" json:"cannedChartPeriod"`
	DataPostingType          string `gorm:"column:dataPostingType;size:50" json:"dataPostingType"`
}

// TableName returns the table name for GORM.
func (ClientDetails) TableName() string {
	return TableClientDetails
}
