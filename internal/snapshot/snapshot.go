package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout used everywhere in snapshots: RFC 3339
// UTC with a literal Z suffix and a fixed six-digit fraction. The fixed width
// keeps lexicographic order on rendered timestamps (and the blob names built
// from them) equal to chronological order.
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t in the snapshot timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a snapshot or Coder API timestamp. It accepts RFC 3339
// with or without fractional seconds and with either Z or a numeric offset.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// UsageKey returns the accumulated-usage key for an owner/template pair.
func UsageKey(ownerName, templateName string) string {
	return strings.ToLower(ownerName) + "_" + templateName
}

// BlobName returns the storage object name for a snapshot timestamp.
// Colons and dots are replaced so the name is filesystem safe while keeping
// lexicographic order equal to chronological order.
func BlobName(timestamp string) string {
	r := strings.NewReplacer(":", "-", ".", "-")
	return "snapshots/" + r.Replace(timestamp) + ".json"
}

// New assembles a snapshot stamped with the current time.
func New(workspaces []Workspace, templates []Template, usage map[string]UsageRecord, wsUsage map[string]WorkspaceUsage, engagement map[string]EngagementDay, now time.Time) *Snapshot {
	return &Snapshot{
		Timestamp:              FormatTime(now),
		Workspaces:             workspaces,
		Templates:              templates,
		AccumulatedUsage:       usage,
		WorkspaceUsageSnapshot: wsUsage,
		DailyEngagement:        engagement,
	}
}

// Decode parses snapshot JSON. Accumulated fields absent from older snapshots
// come back as empty, never nil, so callers can index them directly.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.AccumulatedUsage == nil {
		s.AccumulatedUsage = map[string]UsageRecord{}
	}
	if s.WorkspaceUsageSnapshot == nil {
		s.WorkspaceUsageSnapshot = map[string]WorkspaceUsage{}
	}
	if s.DailyEngagement == nil {
		s.DailyEngagement = map[string]EngagementDay{}
	}
	return &s, nil
}

// Encode renders the snapshot as indented JSON, matching the format the
// dashboard and earlier collectors read and write.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
