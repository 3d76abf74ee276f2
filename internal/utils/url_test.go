package utils

import "testing"

func TestValidateHTTPURL(t *testing.T) {
	if err := ValidateHTTPURL("https://example.com/page"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateHTTPURL("ftp://example.com/file"); err == nil {
		t.Fatalf("expected scheme rejection")
	}
	if err := ValidateHTTPURL("javascript:alert(1)"); err == nil {
		t.Fatalf("expected scheme rejection")
	}
	if err := ValidateHTTPURL("https://"); err == nil {
		t.Fatalf("expected missing host rejection")
	}
}

func TestIsImageURL(t *testing.T) {
	if !IsImageURL("https://example.com/banner.PNG") {
		t.Fatalf("expected png to match")
	}
	if !IsImageURL("https://example.com/pic.jpeg?size=large") {
		t.Fatalf("expected jpeg with query to match")
	}
	if IsImageURL("https://example.com/page.html") {
		t.Fatalf("unexpected match for html")
	}
}

func TestNormalizeURL(t *testing.T) {
	normalized, domain, err := NormalizeURL("https://Example.com/path?utm_source=test&x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "example.com" {
		t.Fatalf("unexpected domain: %s", domain)
	}
	if normalized != "https://example.com/path?x=1" {
		t.Fatalf("unexpected normalized url: %s", normalized)
	}
}
