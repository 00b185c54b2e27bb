package domain

import "time"

// DefaultInterval is used for services configured with a non-positive interval.
const DefaultInterval = 30 * time.Second

// MaxIntervalSeconds bounds the polling interval to one week.
const MaxIntervalSeconds = 7 * 24 * 60 * 60

const (
	ResultUp   = "UP"
	ResultDown = "DOWN"
)

type ServiceID int64

type Service struct {
	ID              ServiceID `json:"id"`
	Name            string    `json:"service_name"`
	URL             string    `json:"healthcheck_url"`
	IntervalSeconds int64     `json:"healthcheck_duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Interval returns the polling interval, falling back to DefaultInterval
// when the configured value is not positive and capping it at
// MaxIntervalSeconds.
func (s Service) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return DefaultInterval
	}
	if s.IntervalSeconds > MaxIntervalSeconds {
		return MaxIntervalSeconds * time.Second
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// ServicePatch carries the fields of a partial update; nil fields are left as is.
type ServicePatch struct {
	Name            *string `json:"service_name"`
	URL             *string `json:"healthcheck_url"`
	IntervalSeconds *int64  `json:"healthcheck_duration_seconds"`
}

func (p ServicePatch) Empty() bool {
	return p.Name == nil && p.URL == nil && p.IntervalSeconds == nil
}

// Apply copies the set fields of p onto s.
func (p ServicePatch) Apply(s *Service) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.URL != nil {
		s.URL = *p.URL
	}
	if p.IntervalSeconds != nil {
		s.IntervalSeconds = *p.IntervalSeconds
	}
}

type CheckResult struct {
	ServiceID  ServiceID     `json:"service_id"`
	Name       string        `json:"service_name"`
	URL        string        `json:"healthcheck_url"`
	Up         bool          `json:"up"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Latency    time.Duration `json:"latency"`
	Reason     string        `json:"reason,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// Result is the UP/DOWN label recorded for the check.
func (r CheckResult) Result() string {
	if r.Up {
		return ResultUp
	}
	return ResultDown
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
