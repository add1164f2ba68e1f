// Package sitecmd exposes runtime site operations as command messages.
package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/net/html"
)

const (
	setLanguageMessageType     = "sitekit.site.set_language"
	setThemeMessageType        = "sitekit.site.set_theme"
	reloadFragmentsMessageType = "sitekit.site.reload_fragments"
)

// SetLanguageCommand switches the active language.
type SetLanguageCommand struct {
	Language string `json:"language"`
}

// Type implements command.Message.
func (SetLanguageCommand) Type() string { return setLanguageMessageType }

// Validate ensures a language code is present.
func (m SetLanguageCommand) Validate() error {
	if strings.TrimSpace(m.Language) == "" {
		return validation.Errors{
			"language": validation.NewError("sitekit.site.set_language.required", "language is required"),
		}
	}
	return nil
}

// SetThemeCommand switches the active theme mode.
type SetThemeCommand struct {
	Mode string `json:"mode"`
}

// Type implements command.Message.
func (SetThemeCommand) Type() string { return setThemeMessageType }

// Validate ensures a mode value is present.
func (m SetThemeCommand) Validate() error {
	if strings.TrimSpace(m.Mode) == "" {
		return validation.Errors{
			"mode": validation.NewError("sitekit.site.set_theme.required", "mode is required"),
		}
	}
	return nil
}

// ReloadFragmentsCommand re-fetches the shared partials into a live document
// so its containers pick up changed markup.
type ReloadFragmentsCommand struct {
	Document *html.Node `json:"-"`
}

// Type implements command.Message.
func (ReloadFragmentsCommand) Type() string { return reloadFragmentsMessageType }

// Validate ensures a target document is present.
func (m ReloadFragmentsCommand) Validate() error {
	if m.Document == nil {
		return validation.Errors{
			"document": validation.NewError("sitekit.site.reload_fragments.required", "document is required"),
		}
	}
	return nil
}
