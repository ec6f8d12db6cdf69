package logger

import (
	"path/filepath"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.uber.org/zap/zapcore"

	"KnocksterSafety/config"
)

func TestParseZapLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{"DEBUG", zapcore.DebugLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tc := range cases {
		if got := parseZapLevel(tc.in); got != tc.want {
			t.Errorf("parseZapLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToHlogLevel(t *testing.T) {
	if got := toHlogLevel(zapcore.WarnLevel); got != hlog.LevelWarn {
		t.Errorf("toHlogLevel(warn) = %v, want %v", got, hlog.LevelWarn)
	}
	if got := toHlogLevel(zapcore.DPanicLevel); got != hlog.LevelInfo {
		t.Errorf("toHlogLevel(dpanic) = %v, want info default", got)
	}
}

func TestBuildWriteSyncerFallsBackToStdout(t *testing.T) {
	orig := config.Cfg.LoggerOutputPath
	defer func() { config.Cfg.LoggerOutputPath = orig }()

	// 指向不存在的目录，打开必然失败，但不应 panic
	config.Cfg.LoggerOutputPath = filepath.Join(t.TempDir(), "no-such-dir", "app.log")

	ws := buildWriteSyncer()
	if ws == nil {
		t.Fatal("expected stdout fallback syncer")
	}
	if logClose != nil {
		t.Error("expected no file handle after fallback")
	}
}
