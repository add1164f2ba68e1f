package environments_test

import (
	"strings"
	"testing"

	"github.com/denudev/sitekit/internal/environments"
)

func newTestResolver() *environments.Resolver {
	return environments.NewResolver("app", map[string]string{
		"signup": "/signup",
		"signin": "/signin",
	}, []int{80, 443, 3000, 5173, 8000, 8080}, "en", "lang")
}

func TestBaseURLPerTier(t *testing.T) {
	resolver := newTestResolver()

	cases := []struct {
		host string
		want string
	}{
		{"denu.dev", "https://app.denu.dev"},
		{"www.denu.dev", "https://app.denu.dev"},
		{"dev.denu.dev", "https://dev.app.denu.dev"},
		{"qa.denu.dev", "https://qa.app.denu.dev"},
		{"uat.denu.dev", "https://uat.app.denu.dev"},
	}

	for _, tc := range cases {
		env := environments.Detect(tc.host)
		if got := resolver.BaseURL(env, environments.Overrides{}); got != tc.want {
			t.Fatalf("base for %s: expected %s got %s", tc.host, tc.want, got)
		}
	}
}

func TestBaseURLLocalOverrideChain(t *testing.T) {
	resolver := newTestResolver()
	env := environments.Detect("localhost:3000")

	overrides := environments.Overrides{
		Runtime:     "http://localhost:9100",
		Stored:      "http://localhost:9200",
		Meta:        "http://localhost:9300",
		QueryOrigin: "http://localhost:9400",
		QueryPort:   "9500",
	}
	if got := resolver.BaseURL(env, overrides); got != "http://localhost:9100" {
		t.Fatalf("expected runtime override to win got %s", got)
	}

	overrides.Runtime = ""
	if got := resolver.BaseURL(env, overrides); got != "http://localhost:9200" {
		t.Fatalf("expected stored override got %s", got)
	}

	overrides.Stored = ""
	if got := resolver.BaseURL(env, overrides); got != "http://localhost:9300" {
		t.Fatalf("expected meta override got %s", got)
	}

	overrides.Meta = ""
	if got := resolver.BaseURL(env, overrides); got != "http://localhost:9400" {
		t.Fatalf("expected query origin override got %s", got)
	}

	overrides.QueryOrigin = ""
	if got := resolver.BaseURL(env, overrides); got != "http://localhost:9500" {
		t.Fatalf("expected query port override got %s", got)
	}
}

func TestBaseURLLocalUnconventionalPort(t *testing.T) {
	resolver := newTestResolver()

	// The page served from a port outside the conventional set is assumed
	// to already be the companion app.
	env := environments.Detect("localhost:4321")
	if got := resolver.BaseURL(env, environments.Overrides{}); got != "http://localhost:4321" {
		t.Fatalf("expected same-origin fallback got %s", got)
	}
}

func TestBaseURLLocalConventionalPortFallsBack(t *testing.T) {
	resolver := newTestResolver()

	env := environments.Detect("localhost:3000")
	if got := resolver.BaseURL(env, environments.Overrides{}); got != "http://localhost:3000" {
		t.Fatalf("expected current origin fallback got %s", got)
	}
}

func TestTargetURLNamedRoute(t *testing.T) {
	resolver := newTestResolver()
	env := environments.Detect("denu.dev")

	got, err := resolver.TargetURL(env, environments.Overrides{}, "signup", "en")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if got != "https://app.denu.dev/signup" {
		t.Fatalf("expected plain signup URL got %s", got)
	}
}

func TestTargetURLAttachesNonDefaultLanguage(t *testing.T) {
	resolver := newTestResolver()
	env := environments.Detect("denu.dev")

	got, err := resolver.TargetURL(env, environments.Overrides{}, "signup", "fa")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if !strings.HasPrefix(got, "https://app.denu.dev/signup") || !strings.Contains(got, "lang=fa") {
		t.Fatalf("expected language parameter got %s", got)
	}

	got, err = resolver.TargetURL(env, environments.Overrides{}, "/pricing", "fa")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if got != "https://app.denu.dev/pricing?lang=fa" {
		t.Fatalf("expected language on raw path got %s", got)
	}
}

func TestTargetURLRawPath(t *testing.T) {
	resolver := newTestResolver()
	env := environments.Detect("dev.denu.dev")

	got, err := resolver.TargetURL(env, environments.Overrides{}, "/pricing", "en")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if got != "https://dev.app.denu.dev/pricing" {
		t.Fatalf("expected joined path got %s", got)
	}

	got, err = resolver.TargetURL(env, environments.Overrides{}, "", "en")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if got != "https://dev.app.denu.dev/" {
		t.Fatalf("expected root for empty target got %s", got)
	}
}

func TestTargetURLUnknownNameJoinsAsPath(t *testing.T) {
	resolver := newTestResolver()
	env := environments.Detect("denu.dev")

	got, err := resolver.TargetURL(env, environments.Overrides{}, "waitlist", "en")
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if got != "https://app.denu.dev/waitlist" {
		t.Fatalf("expected path join fallback got %s", got)
	}
}

func TestOverrideOriginNormalized(t *testing.T) {
	resolver := newTestResolver()
	env := environments.Detect("localhost:3000")

	got := resolver.BaseURL(env, environments.Overrides{Stored: "localhost:9000/"})
	if got != "http://localhost:9000" {
		t.Fatalf("expected normalized origin got %s", got)
	}
}
