package scanner

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name   string
		target string
		scheme string
		host   string
		full   string
	}{
		{name: "bare host", target: "example.com", scheme: "https", host: "example.com", full: "https://example.com"},
		{name: "with scheme", target: "http://example.com/page", scheme: "http", host: "example.com", full: "http://example.com/page"},
		{name: "with port", target: "example.com:8443", scheme: "https", host: "example.com", full: "https://example.com:8443"},
		{name: "whitespace", target: "  example.com  ", scheme: "https", host: "example.com", full: "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseTarget(tt.target)
			if info.Scheme != tt.scheme || info.Host != tt.host || info.FullURL != tt.full {
				t.Errorf("ParseTarget(%q) = %+v, want scheme:%s host:%s full:%s",
					tt.target, info, tt.scheme, tt.host, tt.full)
			}
			if info.Original != tt.target {
				t.Errorf("Original = %q, want %q", info.Original, tt.target)
			}
		})
	}
}

func TestApexDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{host: "example.com", want: "example.com"},
		{host: "shop.example.com", want: "example.com"},
		{host: "a.b.example.com", want: "example.com"},
		{host: "EXAMPLE.COM.", want: "example.com"},
		{host: "localhost", want: "localhost"},
	}

	for _, tt := range tests {
		if got := ApexDomain(tt.host); got != tt.want {
			t.Errorf("ApexDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestSameApex(t *testing.T) {
	if !SameApex("shop.example.com", "blog.example.com") {
		t.Error("sibling subdomains share an apex")
	}
	if SameApex("shop.example.com", "example.net") {
		t.Error("different apexes must not match")
	}
}
