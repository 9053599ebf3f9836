package dispatcher

import (
	"net/url"
	"strings"
	"testing"
)

func TestDeepLinkFormat(t *testing.T) {
	link := DeepLink("https://web.whatsapp.com", "919876543210", "Hi there")

	if !strings.HasPrefix(link, "https://web.whatsapp.com/send?phone=919876543210&") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if !strings.Contains(link, "text=Hi%20there") {
		t.Fatalf("expected %%20-encoded space, got %s", link)
	}
}

func TestDeepLinkRoundTrip(t *testing.T) {
	payloads := []string{
		"Hi there",
		"50% off & more?",
		"line1\nline2",
		"emoji ok ✔",
		"a+b=c",
	}

	for _, payload := range payloads {
		link := DeepLink("https://web.whatsapp.com", "1234567", payload)

		u, err := url.Parse(link)
		if err != nil {
			t.Fatalf("parse %s: %v", link, err)
		}
		q := u.Query()
		if got := q.Get("phone"); got != "1234567" {
			t.Fatalf("phone = %q", got)
		}
		if got := q.Get("text"); got != payload {
			t.Fatalf("text round trip: got %q, want %q", got, payload)
		}
	}
}

func TestDeepLinkTrimsBaseSlash(t *testing.T) {
	link := DeepLink("https://web.whatsapp.com/", "42", "x")
	if strings.Contains(link, "com//send") {
		t.Fatalf("double slash in %s", link)
	}
}
