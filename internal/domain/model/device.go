package model

import (
	"fmt"
	"strings"
)

type LockState string

const (
	LockStateLocked   LockState = "locked"
	LockStateUnlocked LockState = "unlocked"
	LockStateMoved    LockState = "moved"
	LockStateUnknown  LockState = "unknown"
)

// ParseLockState maps a raw vendor status onto a LockState. Anything outside
// the three known values becomes LockStateUnknown.
func ParseLockState(raw string) LockState {
	switch LockState(raw) {
	case LockStateLocked, LockStateUnlocked, LockStateMoved:
		return LockState(raw)
	default:
		return LockStateUnknown
	}
}

// DeviceStatus is a single read of a lock. It is built fresh on every poll.
type DeviceStatus struct {
	DeviceID       string
	State          LockState
	Raw            string
	BatteryPercent *int
}

func NewDeviceStatus(deviceID, raw string, battery *int) DeviceStatus {
	return DeviceStatus{
		DeviceID:       deviceID,
		State:          ParseLockState(raw),
		Raw:            raw,
		BatteryPercent: battery,
	}
}

func (s DeviceStatus) Locked() bool { return s.State == LockStateLocked }

// NeedsNotification reports whether the device should trigger an unlock notice.
// Moved and unknown states never do.
func (s DeviceStatus) NeedsNotification() bool { return s.State == LockStateUnlocked }

const fallbackNameLen = 8

type DeviceDescriptor struct {
	ID          string
	DisplayName string
}

// NewDeviceDescriptors pairs device ids with display names by index.
// Ids are trimmed and empty ones dropped; names are trimmed and matched
// against the filtered ids. Missing or blank names fall back to a
// truncated id.
func NewDeviceDescriptors(ids, names []string) []DeviceDescriptor {
	var out []DeviceDescriptor
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, DeviceDescriptor{ID: id})
	}
	for i := range out {
		name := ""
		if i < len(names) {
			name = strings.TrimSpace(names[i])
		}
		if name == "" {
			name = FallbackDisplayName(out[i].ID)
		}
		out[i].DisplayName = name
	}
	return out
}

// FallbackDisplayName derives a name from the first eight characters of id.
func FallbackDisplayName(id string) string {
	r := []rune(id)
	if len(r) > fallbackNameLen {
		r = r[:fallbackNameLen]
	}
	return fmt.Sprintf("device(%s...)", string(r))
}

// SplitList splits a comma-separated configuration value.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
