package cmd

import (
	"strings"
	"testing"
)

func TestScanSiteTypeFlagListsKnownTypes(t *testing.T) {
	flag := scanCmd.Flags().Lookup("site-type")
	if flag == nil {
		t.Fatal("site-type flag not registered")
	}
	for _, want := range []string{"financial", "ecommerce-standard", "default"} {
		if !strings.Contains(flag.Usage, want) {
			t.Errorf("site-type usage %q missing %q", flag.Usage, want)
		}
	}
}
