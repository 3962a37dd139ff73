// Package models holds the wire types ecgprobe shares with other services.
package models

import "time"

const (
	// CloudEventSpecVersion is the CloudEvents version every event declares.
	CloudEventSpecVersion = "1.0"
	// HeaderDecodedEventType identifies a header decode result.
	HeaderDecodedEventType = "com.carverauto.ecgprobe.header.decoded"
	// EventSource is the source attribute of events emitted by the probe.
	EventSource = "ecgprobe/cli"
)

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// HeaderDecodedEventData is the payload of a HeaderDecodedEventType event.
// Timestamp and DifferenceSeconds are omitted when the header did not decode
// to a calendar value; Error then carries the reason.
type HeaderDecodedEventData struct {
	RunID             string     `json:"run_id"`
	Source            string     `json:"source"`
	Layout            string     `json:"layout"`
	HeaderHex         string     `json:"header_hex"`
	SerialNumber      string     `json:"serial_number,omitempty"`
	TimestampHex      string     `json:"timestamp_hex,omitempty"`
	FullYear          int        `json:"full_year,omitempty"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	ReferenceTime     time.Time  `json:"reference_time"`
	DifferenceSeconds *float64   `json:"difference_seconds,omitempty"`
	Plausible         bool       `json:"plausible"`
	Error             string     `json:"error,omitempty"`
	ProbeVersion      string     `json:"probe_version,omitempty"`
}
