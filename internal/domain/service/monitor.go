package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
)

// RunReport summarises one pass over the configured devices.
type RunReport struct {
	Checked      int
	Unlocked     int
	Unavailable  int
	Unknown      int
	Notified     int
	NotifyFailed int
}

// Monitor polls each configured lock once per run and posts a notification,
// with a lock control, for every device found unlocked.
type Monitor struct {
	reader     outbound.LockReader
	dispatcher *Dispatcher
	pacer      *Pacer
	logger     *slog.Logger
}

func NewMonitor(reader outbound.LockReader, dispatcher *Dispatcher, pacer *Pacer, logger *slog.Logger) *Monitor {
	return &Monitor{
		reader:     reader,
		dispatcher: dispatcher,
		pacer:      pacer,
		logger:     logger,
	}
}

// Run processes devices strictly in order. A failed query or notification is
// logged and counted; it never stops the loop. Only ctx cancellation does.
func (m *Monitor) Run(ctx context.Context, devices []model.DeviceDescriptor) RunReport {
	var report RunReport
	m.logger.Debug("run started", "devices", len(devices), "requestInterval", m.pacer.Interval())

	for _, dev := range devices {
		if err := m.pacer.Wait(ctx); err != nil {
			m.logger.Warn("run interrupted", "error", err, "remaining", len(devices)-report.Checked)
			break
		}
		report.Checked++

		status, err := m.reader.Status(ctx, dev.ID)
		if err != nil {
			report.Unavailable++
			m.logger.Warn("device status unavailable",
				"device", dev.DisplayName,
				"deviceID", dev.ID,
				"error", err,
			)
			continue
		}

		switch status.State {
		case model.LockStateUnlocked:
			report.Unlocked++
			res := m.dispatcher.SendWithAction(ctx, UnlockedMessage(dev, status), model.NewLockReference(dev.ID), dev.DisplayName)
			if res.OK() {
				report.Notified++
			} else {
				report.NotifyFailed++
			}
		case model.LockStateLocked:
			m.logger.Debug("device locked", "device", dev.DisplayName, "deviceID", dev.ID)
		case model.LockStateMoved:
			m.logger.Info("device moved, no action", "device", dev.DisplayName, "deviceID", dev.ID)
		default:
			report.Unknown++
			m.logger.Warn("unknown lock status",
				"device", dev.DisplayName,
				"deviceID", dev.ID,
				"raw", status.Raw,
			)
		}
	}

	m.logger.Info("run complete",
		"checked", report.Checked,
		"unlocked", report.Unlocked,
		"unavailable", report.Unavailable,
		"unknown", report.Unknown,
		"notified", report.Notified,
		"notifyFailed", report.NotifyFailed,
	)
	return report
}

// UnlockedMessage is the notification body for an unlocked device.
func UnlockedMessage(dev model.DeviceDescriptor, status model.DeviceStatus) string {
	msg := fmt.Sprintf("🔓 **%s** is unlocked", dev.DisplayName)
	if status.BatteryPercent != nil {
		msg += fmt.Sprintf(" (battery: %d%%)", *status.BatteryPercent)
	}
	return msg
}
