package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/jonny/lockwatch/internal/domain/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the config for errors that make it unusable in any mode.
func Validate(cfg *Config) error {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.Wrap(err, "running config validator")
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	return joinErrors(errs)
}

// ValidateMonitor checks what the polling commands need before any network
// call: a credential, at least one encodable device id and a webhook for
// the chosen platform.
func ValidateMonitor(cfg *Config) error {
	var errs []string

	if cfg.Sesame.APIKey == "" {
		errs = append(errs, "sesame.apiKey is required ("+EnvAPIKey+")")
	}

	devices := cfg.Devices()
	if len(devices) == 0 {
		errs = append(errs, "sesame.deviceIDs must list at least one device ("+EnvDeviceIDs+")")
	}
	for _, d := range devices {
		if err := model.ValidateDeviceID(d.ID); err != nil {
			errs = append(errs, fmt.Sprintf("sesame.deviceIDs: %v", err))
		}
	}

	switch cfg.Notify.Platform {
	case PlatformDiscord:
		if cfg.Discord.WebhookURL == "" {
			errs = append(errs, "discord.webhookURL is required when notify.platform is discord ("+EnvDiscordWebhookURL+")")
		}
	case PlatformSlack:
		if cfg.Slack.WebhookURL == "" {
			errs = append(errs, "slack.webhookURL is required when notify.platform is slack ("+EnvSlackWebhookURL+")")
		}
	}

	return joinErrors(errs)
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
}
