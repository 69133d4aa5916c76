package shared

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORE", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_SECONDS", "JWT_EXPIRE_DAYS", "BOOKING_QUOTA", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.HTTPAddr != ":5003" || c.Store != StoreMySQL {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.RateLimitMax != 1000 || c.RateLimitWindow != 10*time.Minute {
		t.Fatalf("rate limit defaults: %d / %s", c.RateLimitMax, c.RateLimitWindow)
	}
	if c.JWTTTL != 30*24*time.Hour || c.BookingQuota != 3 {
		t.Fatalf("auth defaults: %s / %d", c.JWTTTL, c.BookingQuota)
	}
	if !reflect.DeepEqual(c.CORSOrigins, []string{"*"}) {
		t.Fatalf("cors default: %v", c.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE", "Mongo")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("TRUST_PROXY", "1")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("IMPORT_PROPERTY_IDS", "1, 2 3")

	c := Load()
	if c.Store != StoreMongo || c.RateLimitMax != 5 || !c.CookieSecure || !c.TrustProxy {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.RateLimitWindow != 10*time.Minute {
		t.Fatalf("bad number should fall back to default, got %s", c.RateLimitWindow)
	}
	if !reflect.DeepEqual(c.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("cors: %v", c.CORSOrigins)
	}
	if !reflect.DeepEqual(c.ImportIDs, []int64{1, 2, 3}) {
		t.Fatalf("ids: %v", c.ImportIDs)
	}
}

func TestConfig_Validate(t *testing.T) {
	ok := Config{Store: StoreMySQL, JWTSecret: "s", RateLimitWindow: time.Second}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	bad := []Config{
		{Store: "postgres", JWTSecret: "s", RateLimitWindow: time.Second},
		{Store: StoreMongo, RateLimitWindow: time.Second},
		{Store: StoreMongo, JWTSecret: "s"},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestParseIDs(t *testing.T) {
	if _, err := ParseIDs("1,x"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	ids, err := ParseIDs("")
	if err != nil || len(ids) != 0 {
		t.Fatalf("empty list: %v %v", ids, err)
	}
}
