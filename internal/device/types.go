package device

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// StatusResponse mirrors the payload returned by /status. Running is nil when
// the device answered without a usable running field.
type StatusResponse struct {
	Running *bool `json:"running"`
}

// LogsResponse mirrors /logs. Lines stays nil when the field is absent, which
// callers treat as "no data" rather than "empty log".
type LogsResponse struct {
	Lines []string `json:"lines"`
}

// EventsResponse mirrors /events.
type EventsResponse struct {
	Items []Detection `json:"items"`
}

// Detection is one object-detection result. Every field is optional on the
// wire, and a field of the wrong type is dropped rather than failing the
// whole /events body.
type Detection struct {
	Label      *string  `json:"label,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Source     string   `json:"source,omitempty"`
	Track      TrackID  `json:"track,omitempty"`
	Timestamp  string   `json:"ts,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. Items that are not objects
// decode as an empty detection so they still count toward the batch.
func (d *Detection) UnmarshalJSON(data []byte) error {
	*d = Detection{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	if label, ok := textField(fields["label"]); ok {
		d.Label = &label
	}
	if raw := bytes.TrimSpace(fields["confidence"]); len(raw) > 0 && raw[0] != '"' {
		var conf float64
		if err := json.Unmarshal(raw, &conf); err == nil {
			d.Confidence = &conf
		}
	}
	d.Source, _ = textField(fields["source"])
	d.Timestamp, _ = textField(fields["ts"])
	if raw, ok := fields["track"]; ok {
		_ = d.Track.UnmarshalJSON(raw)
	}
	return nil
}

// textField reads a JSON string or number as text. Anything else, including
// null, is reported as absent.
func textField(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	if _, err := strconv.ParseFloat(string(trimmed), 64); err != nil {
		return "", false
	}
	return string(trimmed), true
}

// TrackID accepts both string and numeric track identifiers.
type TrackID string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TrackID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = TrackID(strings.TrimSpace(s))
		return nil
	}
	// Objects, arrays and booleans carry no usable id.
	if _, err := strconv.ParseFloat(string(trimmed), 64); err != nil {
		*t = ""
		return nil
	}
	*t = TrackID(trimmed)
	return nil
}

// CommandResult is the common shape of every POST response. A body that could
// not be decoded yields the zero value, i.e. OK=false.
type CommandResult struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Running *bool  `json:"running"`
}

// PTZCommand is a single pan/tilt/zoom instruction. Speed is omitted for stops.
type PTZCommand struct {
	Code  string `json:"code"`
	Speed int    `json:"speed,omitempty"`
}

// PTZ codes understood by the device.
const (
	PTZUp        = "Up"
	PTZDown      = "Down"
	PTZLeft      = "Left"
	PTZRight     = "Right"
	PTZLeftUp    = "LeftUp"
	PTZRightUp   = "RightUp"
	PTZLeftDown  = "LeftDown"
	PTZRightDown = "RightDown"
	PTZZoomTele  = "ZoomTele"
	PTZZoomWide  = "ZoomWide"
	PTZStop      = "Stop"
)

// PTZProfile is the camera connection profile posted to /ptz/config.
type PTZProfile struct {
	Host     string  `json:"host"`
	Port     int     `json:"port"`
	Protocol string  `json:"protocol"`
	Auth     string  `json:"auth"`
	User     string  `json:"user"`
	Password string  `json:"password"`
	Channel  int     `json:"channel"`
	Timeout  float64 `json:"timeout"`
}

// Profile defaults applied to blank fields before a save.
const (
	DefaultPTZPort     = 80
	DefaultPTZProtocol = "http"
	DefaultPTZAuth     = "digest"
	DefaultPTZChannel  = 1
	DefaultPTZTimeout  = 4.0
)

// WithDefaults returns a copy of p with blank or zero fields filled in.
func (p PTZProfile) WithDefaults() PTZProfile {
	p.Host = strings.TrimSpace(p.Host)
	p.User = strings.TrimSpace(p.User)
	if p.Port <= 0 {
		p.Port = DefaultPTZPort
	}
	p.Protocol = strings.ToLower(strings.TrimSpace(p.Protocol))
	if p.Protocol == "" {
		p.Protocol = DefaultPTZProtocol
	}
	p.Auth = strings.ToLower(strings.TrimSpace(p.Auth))
	if p.Auth == "" {
		p.Auth = DefaultPTZAuth
	}
	if p.Channel <= 0 {
		p.Channel = DefaultPTZChannel
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultPTZTimeout
	}
	return p
}
