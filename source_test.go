package main

import (
	"strings"
	"testing"
)

func TestOpenSourceUnsupportedType(t *testing.T) {
	_, err := openSource("oracle", "whatever")
	if err == nil {
		t.Fatal("expected error for unsupported source type")
	}
	if !strings.Contains(err.Error(), "oracle") {
		t.Errorf("error = %q, want offending type named", err)
	}
}

func TestOpenSourceInMemorySQLiteRejected(t *testing.T) {
	if _, err := openSource("sqlite", ":memory:"); err == nil {
		t.Fatal("expected error for in-memory sqlite")
	}
}
