package omx

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func assertArgs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		args := buildArgs(defaultSettings(), "/media/movie.mp4")
		want := []string{
			"omxplayer", "-o", "both", "--blank=0xff000000",
			"--dbus_name", "org.mpris.omxplayer",
			"--layer", "0", "/media/movie.mp4",
		}
		assertArgs(t, args, want)
	})

	t.Run("loop and layer", func(t *testing.T) {
		s := newSettings(WithLoop(true), WithLayer(3), WithDBusName("org.mpris.omxplayer.two"))
		args := buildArgs(s, "/media/movie.mp4")
		want := []string{
			"omxplayer", "-o", "both", "--blank=0xff000000",
			"--dbus_name", "org.mpris.omxplayer.two", "--loop",
			"--layer", "3", "/media/movie.mp4",
		}
		assertArgs(t, args, want)
	})

	t.Run("no background omits blank flag", func(t *testing.T) {
		args := buildArgs(newSettings(WithNoBackground()), "/media/movie.mp4")
		for _, a := range args {
			if strings.HasPrefix(a, "--blank") {
				t.Errorf("args %v contain %s despite no-background", args, a)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		s := newSettings(WithLoop(true))
		a := strings.Join(buildArgs(s, "/a.mp4"), " ")
		b := strings.Join(buildArgs(s, "/a.mp4"), " ")
		if a != b {
			t.Errorf("command not deterministic: %q vs %q", a, b)
		}
	})
}

func TestLaunchSpawnFailureReportedThroughExit(t *testing.T) {
	// An empty-ish PATH makes the spawn fail deterministically; a missing
	// player binary must not fail the launch itself.
	t.Setenv("PATH", t.TempDir())

	s := newSettings(WithLayer(713))
	l := newLauncher(s, zerolog.Nop())
	t.Cleanup(func() { os.Remove(conduitPath(713)) })

	res, err := l.Launch("/media/movie.mp4")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if res.Synthetic {
		t.Error("real launch marked synthetic")
	}

	select {
	case ev := <-l.Exited():
		if ev.Err == nil {
			t.Error("exit notification carries no spawn error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no exit notification")
	}
}

func TestLaunchTestMode(t *testing.T) {
	s := newSettings(WithLoop(true))
	s.TestMode = true

	l := newLauncher(s, zerolog.Nop())
	res, err := l.Launch("/media/movie.mp4")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if !res.Synthetic {
		t.Error("result not marked synthetic")
	}
	if !strings.Contains(res.Command, "/media/movie.mp4") {
		t.Errorf("command %q missing file path", res.Command)
	}
	if !strings.HasPrefix(res.Command, "omxplayer ") {
		t.Errorf("command %q does not start with player binary", res.Command)
	}
	if l.cmd != nil {
		t.Error("synthetic launch created a process")
	}
	if l.Exited() != nil {
		t.Error("synthetic launch has an exit channel")
	}
}
