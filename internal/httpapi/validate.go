package httpapi

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hamed0406/healthchecker/internal/domain"
)

const maxNameLen = 255

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}

// normalizeHTTPURL lowercases scheme and host, drops default ports and a
// bare trailing slash. Invalid input is returned unchanged.
func normalizeHTTPURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}

var httpURLRule = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if !isValidHTTPURL(s) {
		return validation.NewError("validation_invalid_url", "must be an http(s) URL")
	}
	return nil
})

type createServiceRequest struct {
	Name            string `json:"service_name"`
	URL             string `json:"healthcheck_url"`
	IntervalSeconds int64  `json:"healthcheck_duration_seconds"`
}

func (c createServiceRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, maxNameLen)),
		validation.Field(&c.URL, validation.Required, httpURLRule),
		validation.Field(&c.IntervalSeconds, validation.Min(int64(0)), validation.Max(int64(domain.MaxIntervalSeconds))),
	)
}

func validatePatch(p domain.ServicePatch) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, maxNameLen)),
		validation.Field(&p.URL, validation.NilOrNotEmpty, httpURLRule),
		validation.Field(&p.IntervalSeconds, validation.Min(int64(0)), validation.Max(int64(domain.MaxIntervalSeconds))),
	)
}
