package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_RecordAndExceeded(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	if l.Exceeded("k") {
		t.Fatal("fresh key should not be exceeded")
	}
	l.Record("k")
	if l.Exceeded("k") {
		t.Fatal("one hit of two should not be exceeded")
	}
	l.Record("k")
	if !l.Exceeded("k") {
		t.Error("two hits of two should be exceeded")
	}
	if l.Exceeded("other") {
		t.Error("other keys are independent")
	}

	l.Reset("k")
	if l.Exceeded("k") {
		t.Error("Reset should clear the window")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	defer l.Stop()

	l.Record("k")
	if !l.Exceeded("k") {
		t.Fatal("key should be exceeded inside the window")
	}
	time.Sleep(30 * time.Millisecond)
	if l.Exceeded("k") {
		t.Error("window should have expired")
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	l := New(1, time.Minute)
	l.Stop()
	l.Stop()
}

func TestLoginLimiter_CountsFailuresOnly(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()

	// Checks alone never use up the budget.
	for i := 0; i < 10; i++ {
		if ok, _ := ll.Check("1.2.3.4", "A@x.com"); !ok {
			t.Fatalf("check %d should pass", i)
		}
	}

	ll.Fail("1.2.3.4", "A@x.com")
	if ok, _ := ll.Check("1.2.3.4", "a@x.com"); !ok {
		t.Fatal("one failure of two should pass")
	}
	ll.Fail("1.2.3.4", "a@x.com")
	ok, limit := ll.Check("1.2.3.4", " a@X.com ")
	if ok || limit != LimitEmail {
		t.Fatalf("expected email limit, got ok=%v limit=%q", ok, limit)
	}

	ll.ResetEmail("a@x.com")
	if ok, _ := ll.Check("1.2.3.4", "a@x.com"); !ok {
		t.Error("ResetEmail should clear the email window")
	}
}

func TestLoginLimiter_IP(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	defer ll.Stop()

	ll.Fail("9.9.9.9", "a@x.com")
	if ok, limit := ll.Check("9.9.9.9", "b@x.com"); ok || limit != LimitIP {
		t.Errorf("expected ip limit, got ok=%v limit=%q", ok, limit)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote", "", "1.1.1.1:80", "1.1.1.1"},
		{"remote no port", "", "1.1.1.1", "1.1.1.1"},
		{"forwarded header ignored", "10.0.0.1", "1.1.1.1:80", "1.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
				r.Header.Set("X-Real-IP", tt.xff)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
