package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string
	}{
		{
			name: "dev build",
			info: Info{Version: "dev", GoVersion: "go1.24.0"},
			want: []string{"dev", "development build", "go1.24.0"},
		},
		{
			name: "release build",
			info: Info{Version: "v0.3.0", Commit: "abc1234", Date: "2026-01-02", Platform: "linux/amd64"},
			want: []string{"v0.3.0", "abc1234", "2026-01-02", "linux/amd64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("%q missing %q", got, w)
				}
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("unexpected info %+v", info)
	}
}
