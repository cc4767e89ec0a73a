package entities

import (
	"bytes"
	"encoding/json"
)

// ClientConfig is the full record set written for one client: the app
// details row and its two companions.
type ClientConfig struct {
	App          ClientAppDetails
	Operating    ClientDetails
	Notification NotificationConfig
}

// SetIdentity stamps the client name and surrogate key on all three records.
func (c *ClientConfig) SetIdentity(name, key string) {
	c.App.ClientName, c.App.ClientKey = name, key
	c.Operating.ClientName, c.Operating.ClientKey = name, key
	c.Notification.ClientName, c.Notification.ClientKey = name, key
}

// ClientView is the composed read model of a client. Companions are nil when
// the client has no such row.
type ClientView struct {
	App          ClientAppDetails
	Operating    *ClientDetails
	Notification *NotificationConfig
}

// identityKeys are owned by the app details row when flattening companions.
var identityKeys = map[string]struct{}{
	"id":         {},
	"clientName": {},
	"clientKey":  {},
}

// MarshalJSON flattens the three records into a single object, the shape the
// dashboard reads. Fields of a missing companion are emitted as null.
func (v ClientView) MarshalJSON() ([]byte, error) {
	out, err := toJSONMap(v.App)
	if err != nil {
		return nil, err
	}
	if err := mergeCompanion(out, v.Operating); err != nil {
		return nil, err
	}
	if err := mergeCompanion(out, v.Notification); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func mergeCompanion[T any](out map[string]any, companion *T) error {
	var src T
	if companion != nil {
		src = *companion
	}
	fields, err := toJSONMap(src)
	if err != nil {
		return err
	}
	for k, val := range fields {
		if _, skip := identityKeys[k]; skip {
			continue
		}
		if _, taken := out[k]; taken {
			continue
		}
		if companion == nil {
			out[k] = nil
			continue
		}
		out[k] = val
	}
	return nil
}

func toJSONMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// OperatingConfigRow is a raw client_details row with the id of the app
// details row it belongs to, or nil for an orphaned row.
type OperatingConfigRow struct {
	ClientDetails
	ClientID *uint `json:"clientId"`
}

// NotificationConfigRow is a raw notificationconfiguration row with the id
// of the app details row it belongs to, or nil for an orphaned row.
type NotificationConfigRow struct {
	NotificationConfig
	ClientID *uint `json:"clientId"`
}
