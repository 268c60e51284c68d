package uri

import "testing"

func TestParseCollectionAndDocument(t *testing.T) {
	g, err := Parse("guide://standards/go/errors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Collection != "standards" || g.Document != "go/errors" {
		t.Fatalf("got %+v", g)
	}
}

func TestParseCollectionOnly(t *testing.T) {
	g, err := Parse("guide://standards")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Collection != "standards" || g.Document != "" {
		t.Fatalf("got %+v", g)
	}
}

func TestParseCollectionWithTrailingSlash(t *testing.T) {
	g, err := Parse("guide://standards/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Document != "" {
		t.Fatalf("expected empty document for bare trailing slash, got %q", g.Document)
	}
}

func TestParseRejectsWrongScheme(t *testing.T) {
	if _, err := Parse("http://standards/go"); err == nil {
		t.Fatalf("expected error for non-guide scheme")
	}
}

func TestParseRejectsMissingCollection(t *testing.T) {
	if _, err := Parse("guide:///go/errors"); err == nil {
		t.Fatalf("expected error for missing collection")
	}
}

func TestStringRoundTrip(t *testing.T) {
	g := GuideURI{Collection: "standards", Document: "go/errors"}
	if g.String() != "guide://standards/go/errors" {
		t.Fatalf("got %q", g.String())
	}
}
