package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name       string
		env        map[string]string
		wantConfig string
		wantBase   string
	}{
		{
			name:       "home dir fallback",
			wantConfig: filepath.Join(home, ".config", "videoflow.toml"),
			wantBase:   filepath.Join(home, ".local", "share", "videoflow"),
		},
		{
			name:       "xdg dirs",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/cfg", "XDG_DATA_HOME": "/xdg/data"},
			wantConfig: "/xdg/cfg/videoflow.toml",
			wantBase:   "/xdg/data/videoflow",
		},
		{
			name:       "relative xdg dirs are ignored",
			env:        map[string]string{"XDG_CONFIG_HOME": "cfg", "XDG_DATA_HOME": "data"},
			wantConfig: filepath.Join(home, ".config", "videoflow.toml"),
			wantBase:   filepath.Join(home, ".local", "share", "videoflow"),
		},
		{
			name: "videoflow vars win over xdg",
			env: map[string]string{
				"XDG_CONFIG_HOME":       "/xdg/cfg",
				"XDG_DATA_HOME":         "/xdg/data",
				"VIDEOFLOW_CONFIG_PATH": "/custom/config.toml",
				"VIDEOFLOW_HOME":        "/custom/videoflow",
			},
			wantConfig: "/custom/config.toml",
			wantBase:   "/custom/videoflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"VIDEOFLOW_CONFIG_PATH", "VIDEOFLOW_HOME", "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
				t.Setenv(k, tt.env[k])
			}

			defaults, err := GetDefaults()
			if err != nil {
				t.Fatalf("GetDefaults() error = %v", err)
			}
			if got := defaults["config_path"]; got != tt.wantConfig {
				t.Errorf("config_path = %q, want %q", got, tt.wantConfig)
			}
			if got := defaults["base_dir"]; got != tt.wantBase {
				t.Errorf("base_dir = %q, want %q", got, tt.wantBase)
			}
			if got, want := defaults["log_dir"], filepath.Join(tt.wantBase, "log"); got != want {
				t.Errorf("log_dir = %q, want %q", got, want)
			}
		})
	}
}
