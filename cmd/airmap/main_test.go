package main

import "testing"

func TestColorCommand(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"40", "0", "40"}, want: "#ff0000"},
		{args: []string{"20", "0", "40"}, want: "#ffff00"},
		{args: []string{"none", "0", "40"}, want: "#555555"},
		{args: []string{"x", "0", "40"}, wantErr: true},
		{args: []string{"1", "lo", "40"}, wantErr: true},
		{args: []string{"1", "0", "hi"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := colorCommand(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("colorCommand(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("colorCommand(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(&Options{LogLevel: "debug", Env: "prod"}); err != nil {
		t.Errorf("newLogger(valid) error = %v", err)
	}
	if _, err := newLogger(&Options{LogLevel: "loud", Env: "dev"}); err == nil {
		t.Error("newLogger(bad level) error = nil, want non-nil")
	}
	if _, err := newLogger(&Options{LogLevel: "info", Env: "qa"}); err == nil {
		t.Error("newLogger(bad env) error = nil, want non-nil")
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := loadCatalog(&Options{})
	if err != nil || c.Default().ID != "co" {
		t.Errorf("loadCatalog(default) = %v, %v", c, err)
	}
	if _, err := loadCatalog(&Options{Measurables: "/does/not/exist.yaml"}); err == nil {
		t.Error("loadCatalog(missing) error = nil, want non-nil")
	}
}
