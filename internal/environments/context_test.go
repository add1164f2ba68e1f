package environments_test

import (
	"testing"

	"github.com/denudev/sitekit/internal/environments"
)

func TestDetectTiers(t *testing.T) {
	cases := []struct {
		host string
		tier environments.Tier
	}{
		{"localhost", environments.TierLocal},
		{"localhost:8080", environments.TierLocal},
		{"site.localhost", environments.TierLocal},
		{"127.0.0.1", environments.TierLocal},
		{"192.168.1.20:3000", environments.TierLocal},
		{"dev.denu.dev", environments.TierDev},
		{"qa.denu.dev", environments.TierQA},
		{"uat.denu.dev", environments.TierUAT},
		{"denu.dev", environments.TierProd},
		{"www.denu.dev", environments.TierProd},
	}

	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			env := environments.Detect(tc.host)
			if env.Tier != tc.tier {
				t.Fatalf("expected tier %s got %s", tc.tier, env.Tier)
			}
		})
	}
}

func TestDetectRootDomain(t *testing.T) {
	cases := []struct {
		host string
		root string
	}{
		{"dev.denu.dev", "denu.dev"},
		{"denu.dev", "denu.dev"},
		{"deep.sub.denu.dev", "denu.dev"},
		{"localhost", "localhost"},
		{"localhost:5173", "localhost"},
		{"127.0.0.1:8000", "127.0.0.1"},
	}

	for _, tc := range cases {
		env := environments.Detect(tc.host)
		if env.RootDomain != tc.root {
			t.Fatalf("root of %s: expected %s got %s", tc.host, tc.root, env.RootDomain)
		}
	}
}

func TestDetectNormalizesInput(t *testing.T) {
	env := environments.Detect("  DEV.Denu.DEV  ")
	if env.Tier != environments.TierDev {
		t.Fatalf("expected dev got %s", env.Tier)
	}
	if env.Host != "dev.denu.dev" {
		t.Fatalf("expected lowered host got %s", env.Host)
	}
}

func TestContextOrigin(t *testing.T) {
	env := environments.Detect("localhost:5173")
	if origin := env.Origin(); origin != "http://localhost:5173" {
		t.Fatalf("expected http origin with port got %s", origin)
	}

	env = environments.Detect("denu.dev")
	if origin := env.Origin(); origin != "https://denu.dev" {
		t.Fatalf("expected https origin got %s", origin)
	}

	env = environments.Detect("denu.dev:443")
	if origin := env.Origin(); origin != "https://denu.dev" {
		t.Fatalf("expected default port omitted got %s", origin)
	}
}

func TestSubdomainPrefix(t *testing.T) {
	if prefix := environments.Detect("dev.denu.dev").SubdomainPrefix(); prefix != "dev." {
		t.Fatalf("expected dev. got %q", prefix)
	}
	if prefix := environments.Detect("denu.dev").SubdomainPrefix(); prefix != "" {
		t.Fatalf("expected empty prefix for prod got %q", prefix)
	}
	if prefix := environments.Detect("localhost").SubdomainPrefix(); prefix != "" {
		t.Fatalf("expected empty prefix for local got %q", prefix)
	}
}
