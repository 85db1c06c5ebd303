package main

import (
	"bytes"
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"migrate", "seed"},
		{"roles", "sync"},
		{"roles", "show"},
		{"users", "create"},
		{"sessions", "prune"},
	} {
		cmd, rest, err := root.Find(path)
		if err != nil || len(rest) != 0 || cmd.Name() != path[len(path)-1] {
			t.Fatalf("command %v not registered: %v", path, err)
		}
	}
}

func TestUsersCreateFlags(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{})
	cmd, _, err := root.Find([]string{"users", "create"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"email", "name", "role", "password"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing --%s", name)
		}
	}
	if got := cmd.Flags().Lookup("role").DefValue; got != "viewer" {
		t.Fatalf("default role = %q", got)
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("missing --config")
	}
}
