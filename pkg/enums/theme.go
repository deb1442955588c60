package enums

import (
	"fmt"
	"slices"
)

// ThemeMode, Skin, Layout, BarType and ContentWidth are the console UI preferences.
type (
	ThemeMode    string
	Skin         string
	Layout       string
	BarType      string
	ContentWidth string
)

const (
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
	ThemeModeSystem ThemeMode = "system"

	SkinDefault  Skin = "default"
	SkinBordered Skin = "bordered"

	LayoutVertical   Layout = "vertical"
	LayoutHorizontal Layout = "horizontal"

	BarSticky BarType = "sticky"
	BarStatic BarType = "static"
	BarHidden BarType = "hidden"

	ContentWidthBoxed ContentWidth = "boxed"
	ContentWidthFluid ContentWidth = "fluid"
)

func (m ThemeMode) IsValid() bool {
	return slices.Contains([]ThemeMode{ThemeModeLight, ThemeModeDark, ThemeModeSystem}, m)
}

func (s Skin) IsValid() bool {
	return s == SkinDefault || s == SkinBordered
}

func (l Layout) IsValid() bool {
	return l == LayoutVertical || l == LayoutHorizontal
}

func (b BarType) IsValid() bool {
	return slices.Contains([]BarType{BarSticky, BarStatic, BarHidden}, b)
}

func (c ContentWidth) IsValid() bool {
	return c == ContentWidthBoxed || c == ContentWidthFluid
}

// ParseThemeMode converts raw input into a ThemeMode.
func ParseThemeMode(value string) (ThemeMode, error) {
	mode := ThemeMode(value)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid theme mode %q", value)
	}
	return mode, nil
}
