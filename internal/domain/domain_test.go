package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestService_IntervalDefaultsWhenNotPositive(t *testing.T) {
	cases := []struct {
		in   int64
		want time.Duration
	}{
		{0, DefaultInterval},
		{-5, DefaultInterval},
		{1, time.Second},
		{45, 45 * time.Second},
		{MaxIntervalSeconds, MaxIntervalSeconds * time.Second},
		{MaxIntervalSeconds + 1, MaxIntervalSeconds * time.Second},
		{10_000_000_000, MaxIntervalSeconds * time.Second},
	}
	for _, c := range cases {
		got := Service{IntervalSeconds: c.in}.Interval()
		if got != c.want {
			t.Fatalf("Interval(%d)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestService_JSONUsesStoreFieldNames(t *testing.T) {
	s := Service{
		ID:              7,
		Name:            "Google",
		URL:             "https://www.google.com",
		IntervalSeconds: 30,
		CreatedAt:       time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "service_name", "healthcheck_url", "healthcheck_duration_seconds", "created_at", "updated_at"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}
}

func TestServicePatch_ApplyOnlySetFields(t *testing.T) {
	s := Service{Name: "old", URL: "https://old.example", IntervalSeconds: 10}
	name := "new"
	p := ServicePatch{Name: &name}
	if p.Empty() {
		t.Fatalf("patch with a name should not be empty")
	}
	p.Apply(&s)
	if s.Name != "new" || s.URL != "https://old.example" || s.IntervalSeconds != 10 {
		t.Fatalf("unexpected service after patch: %+v", s)
	}
	if !(ServicePatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
}

func TestCheckResult_Result(t *testing.T) {
	if (CheckResult{Up: true}).Result() != ResultUp {
		t.Fatalf("up result should be UP")
	}
	if (CheckResult{}).Result() != ResultDown {
		t.Fatalf("down result should be DOWN")
	}
}
