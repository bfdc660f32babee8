package parser

import (
	"strings"
	"testing"
)

func TestIsGarbageText(t *testing.T) {
	cases := map[string]bool{
		"Section 420 of the Indian Penal Code deals with cheating.": false,
		"~~~~^^^{{{|||}}}~~~~":           true,
		"xkcdfgqwrtplm zzzvvbnmkl qqwrt": true,
		"": false,
	}
	for in, want := range cases {
		if got := IsGarbageText(in); got != want {
			t.Fatalf("IsGarbageText(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsGarbageTextNonASCII(t *testing.T) {
	// Mostly mojibake from a bad encoding pass.
	in := strings.Repeat("Ã¤Â½", 20) + " ok"
	if !IsGarbageText(in) {
		t.Fatal("expected mojibake to be flagged")
	}
}

func TestIsNoiseLine(t *testing.T) {
	cases := map[string]bool{
		"12":                         true,
		"123":                        true,
		"17/04/2019":                 true,
		"Provided that the Court":    false,
		"1. Short title and extent.": false,
	}
	for in, want := range cases {
		if got := IsNoiseLine(in); got != want {
			t.Fatalf("IsNoiseLine(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFixSpacing(t *testing.T) {
	got := FixSpacing("P unishment for cheating")
	if got != "Punishment for cheating" {
		t.Fatalf("got %q", got)
	}
	got = FixSpacing("A person who cheats")
	if got != "A person who cheats" {
		t.Fatalf("one-letter word merged: %q", got)
	}
}

func TestCleanTextRemovesIndexArtifacts(t *testing.T) {
	in := "Section 300.\nhttps://indiankanoon.org/doc/12345/\nMurder is defined\nwhere the act is done"
	out := CleanText(in)
	if strings.Contains(out, "indiankanoon") {
		t.Fatalf("url survived: %q", out)
	}
	if !strings.Contains(out, "Murder is defined where the act is done") {
		t.Fatalf("hard wrap not repaired: %q", out)
	}
}

func TestStripMarginNotes(t *testing.T) {
	lines := []string{
		"302. Punishment for murder.",
		"Punishment for murder",
		"Whoever commits murder shall be punished with death.",
	}
	out := StripMarginNotes(lines)
	for _, ln := range out {
		if ln == "Punishment for murder" {
			t.Fatal("margin note survived")
		}
	}
	if len(out) != 2 {
		t.Fatalf("got %d lines, want 2", len(out))
	}
}
