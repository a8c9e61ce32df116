package main

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPrintPasswordHash(t *testing.T) {
	var out bytes.Buffer
	if err := printPasswordHash(&out, "letmein"); err != nil {
		t.Fatalf("printPasswordHash: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("letmein")); err != nil {
		t.Fatalf("printed hash does not match password: %v", err)
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Fatalf("expected a single line, got %q", out.String())
	}
}
