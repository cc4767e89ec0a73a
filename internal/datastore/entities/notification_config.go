package entities

// NotificationConfig holds a client's alerting configuration. The five
// threshold columns are text so operators can enter compound values.
type NotificationConfig struct {
	ID         uint   `gorm:"column:id;primaryKey" json:"id"`
	ClientName string `gorm:"column:clientName;size:255;not null" json:"clientName"`
	ClientKey  string `gorm:"column:clientKey;size:36" json:"clientKey"`

	Push                            Flag   `gorm:"column:push;size:10" json:"push"`
	TimeRestriction                 string `gorm:"column:timeRestriction;size:50" json:"timeRestriction"`
	WeekendRestriction              int    `gorm:"column:weekendRestriction" json:"weekendRestriction"`
	AlertInterval                   int    `gorm:"column:alertInterval" json:"alertInterval"`
	JanitorIssueInterval            string `gorm:"column:janitorIssueInterval;size:50" json:"janitorIssueInterval"`
	MaintenanceIssueInterval        string `gorm:"column:maintenanceIssueInterval;size:50" json:"maintenanceIssueInterval"`
	FeedbackDuplicateFilterInterval int    `gorm:"column:feedbackDuplicateFilterInterval" json:"feedbackDuplicateFilterInterval"`
	FeedbackFilterCount             int    `gorm:"column:feedbackFilterCount" json:"feedbackFilterCount"`
	DeviceEmailFlag                 string `gorm:"column:deviceEmailFlag;size:10" json:"deviceEmailFlag"`
	FeedbackCombinedFlag            Flag   `gorm:"column:feedbackCombinedFlag;size:10" json:"feedbackCombinedFlag"`
	FeedbackEmailFlag               string `gorm:"column:feedbackEmailFlag;size:10" json:"feedbackEmailFlag"`
	FeedbackTextFlag                int    `gorm:"column:feedbackTextFlag" json:"feedbackTextFlag"`
	DeviceTextFlag                  int    `gorm:"column:deviceTextFlag" json:"deviceTextFlag"`
	QRJanitorPush                   Flag   `gorm:"column:qrJanitorpush;size:10" json:"qrJanitorpush"`
	QRJanitorTextFlag               int    `gorm:"column:qrJanitorTextFlag" json:"qrJanitorTextFlag"`
	QRJanitorEmailFlag              int    `gorm:"column:qrJanitorEmailFlag" json:"qrJanitorEmailFlag"`
	OpenAreaTrafficFlag             int    `gorm:"column:openAreaTrafficFlag" json:"openAreaTrafficFlag"`
	EscalationType                  int    `gorm:"column:escalationType" json:"escalationType"`
	EscalationLevel1Interval        int    `gorm:"column:escalationLevel1Interval" json:"escalationLevel1Interval"`
	EscalationLevel2Interval        int    `gorm:"column:escalationLevel2Interval" json:"escalationLevel2Interval"`
	NotCleanEscalationInterval      int    `gorm:"column:notCleanEscalationInterval" json:"notCleanEscalationInterval"`
	CleaningScheduleFlag            Flag   `gorm:"column:cleaningScheduleFlag;size:10" json:"cleaningScheduleFlag"`
	TrafficAlert                    Flag   `gorm:"column:trafficAlert;size:10" json:"trafficAlert"`
	DispatchedInterval              int    `gorm:"column:dispatchedInterval" json:"dispatchedInterval"`

	DeviceDataTimeInterval string `gorm:"column:deviceDataTimeInterval;size:500" json:"deviceDataTimeInterval"`
	ToiletPaperThreshold   string `gorm:"column:toiletPaperThreshold;size:400" json:"toiletPaperThreshold"`
	PaperTowelThreshold    string `gorm:"column:paperTowelThreshold;size:200" json:"paperTowelThreshold"`
	TrashThreshold         string `gorm:"column:trashThreshold;size:400" json:"trashThreshold"`
	AreaAlertThreshold     string `gorm:"column:areaAlertThreshold;size:300" json:"areaAlertThreshold"`
}

// TableName returns the table name for GORM.
func (NotificationConfig) TableName() string {
	return TableNotificationConfig
}
