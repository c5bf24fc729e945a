package cli

import "testing"

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		opt  Options
		want int
	}{
		{name: "no args", args: nil, want: 2},
		{name: "unknown subcommand", args: []string{"frobnicate"}, want: 2},
		{name: "add without title", args: []string{"add"}, want: 2},
		{name: "done without title", args: []string{"done"}, want: 2},
		{name: "rm without title", args: []string{"rm"}, want: 2},
		{name: "auth without verb", args: []string{"auth"}, want: 2},
		{name: "auth unknown verb", args: []string{"auth", "register"}, want: 2},
		{name: "help", args: []string{"help"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Run(tt.args, tt.opt); got != tt.want {
				t.Errorf("Run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestRunRequiresBackendForWrites(t *testing.T) {
	// No backend configured anywhere: networked commands must refuse with
	// a usage code instead of dialing nothing.
	for _, args := range [][]string{
		{"add", "Buy milk"},
		{"done", "Buy milk"},
		{"rm", "Buy milk"},
		{"ls"},
	} {
		opt := Options{Plain: true}
		if got := Run(args, opt); got != 2 {
			t.Errorf("Run(%v) with no backend = %d, want 2", args, got)
		}
	}
}

func TestRunRejectsUnparsableBackend(t *testing.T) {
	opt := Options{Backend: "not-a-url", Plain: true}
	if got := Run([]string{"add", "Buy milk"}, opt); got != 2 {
		t.Errorf("Run with relative backend = %d, want 2", got)
	}
}
