package portal

import "time"

// ProbeRecord is one persisted availability check.
type ProbeRecord struct {
	ID           string
	Endpoint     string
	Success      bool
	ErrorCode    int
	ErrorMessage string
	Duration     time.Duration
	CheckedAt    time.Time
}

// NewProbeRecord captures a probe result for endpoint.
func NewProbeRecord(id, endpoint string, result OperationResult, duration time.Duration, checkedAt time.Time) ProbeRecord {
	return ProbeRecord{
		ID:           id,
		Endpoint:     endpoint,
		Success:      result.Success,
		ErrorCode:    result.ErrorCode,
		ErrorMessage: result.ErrorMessage,
		Duration:     duration,
		CheckedAt:    checkedAt,
	}
}
