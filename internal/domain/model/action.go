package model

import (
	"strings"

	"github.com/pkg/errors"
)

// ActionDelimiter separates the action kind from the device id in an
// encoded control identifier.
const ActionDelimiter = "_"

type ActionKind string

const ActionLock ActionKind = "lock"

var (
	ErrEmptyDeviceID      = errors.New("device id is empty")
	ErrDelimiterInID      = errors.New("device id contains the action delimiter")
	ErrUnknownActionKind  = errors.New("unknown action kind")
	ErrMalformedControlID = errors.New("malformed control id")
)

// ActionReference names a command for one device. It travels through a chat
// control as an opaque identifier.
type ActionReference struct {
	Kind     ActionKind
	DeviceID string
}

func NewLockReference(deviceID string) ActionReference {
	return ActionReference{Kind: ActionLock, DeviceID: deviceID}
}

func (a ActionReference) Validate() error {
	if a.Kind != ActionLock {
		return errors.Wrapf(ErrUnknownActionKind, "%q", a.Kind)
	}
	return ValidateDeviceID(a.DeviceID)
}

// Encode returns "<kind>_<deviceId>".
func (a ActionReference) Encode() (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	return string(a.Kind) + ActionDelimiter + a.DeviceID, nil
}

// DecodeActionReference is the inverse of Encode.
func DecodeActionReference(id string) (ActionReference, error) {
	kind, deviceID, ok := strings.Cut(id, ActionDelimiter)
	if !ok {
		return ActionReference{}, errors.Wrapf(ErrMalformedControlID, "%q", id)
	}
	ref := ActionReference{Kind: ActionKind(kind), DeviceID: deviceID}
	if err := ref.Validate(); err != nil {
		return ActionReference{}, err
	}
	return ref, nil
}

// ValidateDeviceID checks that id can be carried inside an encoded reference.
func ValidateDeviceID(id string) error {
	if id == "" {
		return ErrEmptyDeviceID
	}
	if strings.Contains(id, ActionDelimiter) {
		return errors.Wrapf(ErrDelimiterInID, "%q", id)
	}
	return nil
}
