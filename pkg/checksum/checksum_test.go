package checksum

import "testing"

func TestSumOfABC(t *testing.T) {
	got := Sum([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got.String() != want {
		t.Fatalf("Sum(abc) = %s, want %s", got.String(), want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	c := Sum([]byte("hello world"))
	parsed, err := Parse(c.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !parsed.Equal(c) {
		t.Fatalf("Parse(String()) != original")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not-hex"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
	if _, err := Parse("abcd"); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestIsZero(t *testing.T) {
	var c Checksum
	if !c.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if Sum([]byte("x")).IsZero() {
		t.Fatal("non-zero checksum reported IsZero")
	}
}

func TestMarshalTextRoundTrip(t *testing.T) {
	c := Sum([]byte("abc"))
	text, err := c.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var out Checksum
	if err := out.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if !out.Equal(c) {
		t.Fatal("round trip through MarshalText/UnmarshalText changed value")
	}
}
