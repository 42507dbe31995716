package omx

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSettingsDefaults(t *testing.T) {
	got := New(zerolog.Nop()).Settings()
	want := defaultSettings()
	if got != want {
		t.Errorf("default settings = %+v, want %+v", got, want)
	}
}

func TestSettingsSingleOverride(t *testing.T) {
	got := New(zerolog.Nop(), WithLoop(true)).Settings()

	want := defaultSettings()
	want.Loop = true
	if got != want {
		t.Errorf("settings with loop override = %+v, want %+v", got, want)
	}
}

func TestSettingsBackgroundExclusivity(t *testing.T) {
	t.Run("no-background clears color", func(t *testing.T) {
		s := newSettings(WithBackgroundColor("0x11223344"), WithNoBackground())
		if !s.NoBackground {
			t.Error("NoBackground not set")
		}
		if s.BackgroundColor != "" {
			t.Errorf("BackgroundColor = %q, want cleared", s.BackgroundColor)
		}
	})

	t.Run("color clears no-background", func(t *testing.T) {
		s := newSettings(WithNoBackground(), WithBackgroundColor("0x11223344"))
		if s.NoBackground {
			t.Error("NoBackground still set")
		}
		if s.BackgroundColor != "0x11223344" {
			t.Errorf("BackgroundColor = %q, want 0x11223344", s.BackgroundColor)
		}
	})
}

func TestEnableTestMode(t *testing.T) {
	c := New(zerolog.Nop())
	if c.Settings().TestMode {
		t.Fatal("test mode set by default")
	}
	c.EnableTestMode()
	if !c.Settings().TestMode {
		t.Error("EnableTestMode did not take effect")
	}
}
