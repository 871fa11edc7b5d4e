package shared

import (
	"strings"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	tc := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }

			cmd, err := browserCommand("http://127.0.0.1:3000")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected unsupported platform error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasSuffix(cmd.Path, tt.want) && cmd.Args[0] != tt.want {
				t.Errorf("expected %s command, got %v", tt.want, cmd.Args)
			}
			if cmd.Args[len(cmd.Args)-1] != "http://127.0.0.1:3000" {
				t.Errorf("expected url as last argument, got %v", cmd.Args)
			}
		})
	}
}
