package settings

import (
	"fmt"

	"github.com/angelmondragon/lttsale-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
)

// Theme is the console's UI preference blob. None of it is security sensitive.
type Theme struct {
	Mode         enums.ThemeMode    `json:"mode"`
	Skin         enums.Skin         `json:"skin"`
	Layout       enums.Layout       `json:"layout"`
	NavbarType   enums.BarType      `json:"navbarType"`
	FooterType   enums.BarType      `json:"footerType"`
	ContentWidth enums.ContentWidth `json:"contentWidth"`
	SemiDark     bool               `json:"semiDark"`
	NavCollapsed bool               `json:"navCollapsed"`
}

// Defaults is what a user sees before saving anything and after a reset.
func Defaults() Theme {
	return Theme{
		Mode:         enums.ThemeModeLight,
		Skin:         enums.SkinDefault,
		Layout:       enums.LayoutVertical,
		NavbarType:   enums.BarSticky,
		FooterType:   enums.BarStatic,
		ContentWidth: enums.ContentWidthFluid,
	}
}

// Validate rejects values outside each preference's enum.
func (t Theme) Validate() error {
	details := map[string]string{}
	if !t.Mode.IsValid() {
		details["mode"] = fmt.Sprintf("unknown mode %q", t.Mode)
	}
	if !t.Skin.IsValid() {
		details["skin"] = fmt.Sprintf("unknown skin %q", t.Skin)
	}
	if !t.Layout.IsValid() {
		details["layout"] = fmt.Sprintf("unknown layout %q", t.Layout)
	}
	if !t.NavbarType.IsValid() {
		details["navbarType"] = fmt.Sprintf("unknown navbar type %q", t.NavbarType)
	}
	if !t.FooterType.IsValid() {
		details["footerType"] = fmt.Sprintf("unknown footer type %q", t.FooterType)
	}
	if !t.ContentWidth.IsValid() {
		details["contentWidth"] = fmt.Sprintf("unknown content width %q", t.ContentWidth)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid settings").WithDetails(details)
	}
	return nil
}

// Patch changes only the preferences that are set.
type Patch struct {
	Mode         *enums.ThemeMode    `json:"mode,omitempty"`
	Skin         *enums.Skin         `json:"skin,omitempty"`
	Layout       *enums.Layout       `json:"layout,omitempty"`
	NavbarType   *enums.BarType      `json:"navbarType,omitempty"`
	FooterType   *enums.BarType      `json:"footerType,omitempty"`
	ContentWidth *enums.ContentWidth `json:"contentWidth,omitempty"`
	SemiDark     *bool               `json:"semiDark,omitempty"`
	NavCollapsed *bool               `json:"navCollapsed,omitempty"`
}

func (p Patch) Apply(t Theme) Theme {
	if p.Mode != nil {
		t.Mode = *p.Mode
	}
	if p.Skin != nil {
		t.Skin = *p.Skin
	}
	if p.Layout != nil {
		t.Layout = *p.Layout
	}
	if p.NavbarType != nil {
		t.NavbarType = *p.NavbarType
	}
	if p.FooterType != nil {
		t.FooterType = *p.FooterType
	}
	if p.ContentWidth != nil {
		t.ContentWidth = *p.ContentWidth
	}
	if p.SemiDark != nil {
		t.SemiDark = *p.SemiDark
	}
	if p.NavCollapsed != nil {
		t.NavCollapsed = *p.NavCollapsed
	}
	return t
}

// fillDefaults replaces empty or unknown stored values so an old blob stays usable
// after the enums change.
func fillDefaults(t Theme) Theme {
	d := Defaults()
	if !t.Mode.IsValid() {
		t.Mode = d.Mode
	}
	if !t.Skin.IsValid() {
		t.Skin = d.Skin
	}
	if !t.Layout.IsValid() {
		t.Layout = d.Layout
	}
	if !t.NavbarType.IsValid() {
		t.NavbarType = d.NavbarType
	}
	if !t.FooterType.IsValid() {
		t.FooterType = d.FooterType
	}
	if !t.ContentWidth.IsValid() {
		t.ContentWidth = d.ContentWidth
	}
	return t
}
