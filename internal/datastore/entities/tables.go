package entities

// Legacy table names shared with the dashboard.
const (
	TableClientAppDetails   = "clientappdetails"
	TableClientDetails      = "client_details"
	TableNotificationConfig = "notificationconfiguration"
	TableUsers              = "users"
)
