package connector

import "testing"

func TestParseIdentityFillsSentinel(t *testing.T) {
	id := ParseIdentity(nil, "msteams")
	if id.ID != NotFound || id.Name != NotFound {
		t.Fatalf("expected sentinel fields, got %+v", id)
	}
	if id.Channel != "msteams" {
		t.Fatalf("expected channel msteams, got %q", id.Channel)
	}

	id = ParseIdentity(&ChannelAccount{ID: "u1"}, "msteams")
	if id.ID != "u1" {
		t.Fatalf("expected id u1, got %q", id.ID)
	}
	if id.Name != NotFound {
		t.Fatalf("expected sentinel name, got %q", id.Name)
	}
}

func TestIdentityCanonicalDeterministic(t *testing.T) {
	a := ParseIdentity(&ChannelAccount{ID: "u1", Name: "Alice"}, "msteams")
	b := ParseIdentity(&ChannelAccount{ID: "u1", Name: "Alice"}, "msteams")
	if a.Canonical() != b.Canonical() {
		t.Fatalf("canonical forms differ: %s vs %s", a.Canonical(), b.Canonical())
	}
	if !a.Equal(b) {
		t.Fatal("expected identities to be equal")
	}

	c := ParseIdentity(&ChannelAccount{ID: "u1", Name: "Alice"}, "slack")
	if a.Equal(c) {
		t.Fatal("identities on different channels must not be equal")
	}
}

func TestIdentityCanonicalEmptyChannelIsNull(t *testing.T) {
	id := Identity{ID: "u1", Name: "Alice"}
	want := `{"id":"u1","name":"Alice","channel":null}`
	if got := id.Canonical(); got != want {
		t.Fatalf("canonical = %s, want %s", got, want)
	}
}

func TestIdentitySubjectOmitsSentinel(t *testing.T) {
	id := ParseIdentity(&ChannelAccount{ID: "u1"}, "msteams")
	subject := id.Subject()
	if subject.ID != "u1" {
		t.Fatalf("expected subject id u1, got %q", subject.ID)
	}
	if subject.Name != "" {
		t.Fatalf("sentinel name must not leak into subject, got %q", subject.Name)
	}
}
