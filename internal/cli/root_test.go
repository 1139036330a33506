package cli

import "testing"

func TestNewRootCmdSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"resolve", "sync", "watch"} {
		if !names[want] {
			t.Errorf("Root command is missing subcommand %s", want)
		}
	}
}

func TestVerboseFlagRegistered(t *testing.T) {
	root := NewRootCmd()
	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("Root command should register the verbose flag")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("Root command should register the config flag")
	}
}
