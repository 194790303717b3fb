// Package protocol defines the WebSocket message types exchanged with
// pose-estimator clients and event consumers. The estimator (typically
// MediaPipe running in a browser) pushes landmark frames in; the server
// pushes score, calibration, and alert events out.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/posturelab/go-posture/pkg/alert"
	"github.com/posturelab/go-posture/pkg/calibration"
	"github.com/posturelab/go-posture/pkg/landmark"
	"github.com/posturelab/go-posture/pkg/score"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Estimator → Server messages
	TypeFrame MessageType = "frame" // Landmark frame

	// Server → Consumer messages
	TypeScore               MessageType = "score"                // Smoothed score update
	TypeCalibrationProgress MessageType = "calibration_progress" // Periodic calibration progress
	TypeCalibrationResult   MessageType = "calibration_result"   // Calibration outcome
	TypeAlert               MessageType = "alert"                // Low-score alert

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Estimator → Server Message Types
// =============================================================================

// FrameData carries one pose-estimation sample. Points must hold all 33
// landmarks in MediaPipe order.
type FrameData struct {
	Points      []landmark.Landmark `json:"points"`
	TimestampMs int64               `json:"timestamp_ms,omitempty"`
}

// Frame converts the payload into a pipeline frame, validating the
// landmark count.
func (d *FrameData) Frame() (*landmark.Frame, error) {
	if len(d.Points) != landmark.NumLandmarks {
		return nil, fmt.Errorf("frame has %d landmarks, want %d", len(d.Points), landmark.NumLandmarks)
	}

	f := &landmark.Frame{TimestampMs: d.TimestampMs}
	copy(f.Points[:], d.Points)
	return f, nil
}

// =============================================================================
// Server → Consumer Message Types
// =============================================================================

// ScoreData is a smoothed score update.
type ScoreData struct {
	Value       int          `json:"value"`
	Flags       []score.Flag `json:"flags,omitempty"`
	Stuck       bool         `json:"stuck"`
	TimestampMs int64        `json:"timestamp_ms"`
}

// CalibrationProgressData is a periodic calibration progress snapshot.
type CalibrationProgressData struct {
	Percent         float64           `json:"percent"`
	SampleCount     int               `json:"sample_count"`
	TimeRemainingMs int64             `json:"time_remaining_ms"`
	State           calibration.State `json:"state"`
}

// CalibrationResultData is the outcome of a calibration run. Error is
// empty on success.
type CalibrationResultData struct {
	Baseline *calibration.Baseline `json:"baseline,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// AlertData is a raised low-score alert.
type AlertData struct {
	Score       int   `json:"score"`
	Threshold   int   `json:"threshold"`
	TimestampMs int64 `json:"timestamp_ms"`
}

// AlertDataFrom converts an alert event into its wire form.
func AlertDataFrom(ev alert.Event) AlertData {
	return AlertData{
		Score:       ev.Score,
		Threshold:   ev.Threshold,
		TimestampMs: ev.TimestampMs,
	}
}
