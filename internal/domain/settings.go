package domain

// Notification flag names, matching the persisted JSON keys.
const (
	FlagPushNotifications = "pushNotifications"
	FlagEmailAlerts       = "emailAlerts"
	FlagSMSAlerts         = "smsAlerts"
)

// NotificationSettings holds the boolean notification toggles.
type NotificationSettings struct {
	PushNotifications bool `json:"pushNotifications"`
	EmailAlerts       bool `json:"emailAlerts"`
	SMSAlerts         bool `json:"smsAlerts"`
}

// DefaultNotificationSettings returns the settings used when nothing is stored.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{PushNotifications: true, EmailAlerts: true, SMSAlerts: false}
}
