package domain

import (
	"fmt"
	"strings"
	"time"
)

// ClockTime is a time of day with second precision, stored as seconds since
// midnight. Policies use it for allowed-hours bounds.
type ClockTime int

// ParseClockTime parses a "HH:MM:SS" (or "HH:MM") value.
func ParseClockTime(value string) (ClockTime, error) {
	value = strings.TrimSpace(value)
	layout := "15:04:05"
	if strings.Count(value, ":") == 1 {
		layout = "15:04"
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", value, err)
	}
	return ClockTime(parsed.Hour()*3600 + parsed.Minute()*60 + parsed.Second()), nil
}

// ClockTimeOf extracts the time-of-day component of the supplied instant in
// its own location.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// String renders the clock time as HH:MM:SS.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60)
}

// Policy carries the limits bound to a role. Nil limit fields mean unlimited.
type Policy struct {
	ID                      string
	RoleID                  string
	RoleName                string
	BandwidthDownMbps       float64
	BandwidthUpMbps         float64
	DailyQuotaBytes         *int64
	SessionTimeLimitMinutes *int
	AllowedHoursStart       *ClockTime
	AllowedHoursEnd         *ClockTime
	Access24x7              bool
	BlockedCategories       []string
	UpdatedAt               time.Time
}

// HasHourWindow reports whether both allowed-hours bounds are configured.
// A policy with only one bound behaves permissively; PolicyService rejects
// such writes so the state only arises from pre-existing data.
func (p Policy) HasHourWindow() bool {
	return p.AllowedHoursStart != nil && p.AllowedHoursEnd != nil
}

// WithinAllowedHours evaluates the instant against the configured window,
// inclusive at both bounds. Policies marked 24x7 or lacking a complete window
// always pass.
func (p Policy) WithinAllowedHours(at time.Time) bool {
	if p.Access24x7 || !p.HasHourWindow() {
		return true
	}
	current := ClockTimeOf(at)
	return current >= *p.AllowedHoursStart && current <= *p.AllowedHoursEnd
}

// BlocksCategory reports whether the policy lists the supplied category tag.
func (p Policy) BlocksCategory(tag string) bool {
	for _, blocked := range p.BlockedCategories {
		if strings.EqualFold(blocked, tag) {
			return true
		}
	}
	return false
}

// PolicyUpdate carries a partial policy mutation. Nil fields are left
// untouched; limit fields use double pointers so callers can distinguish
// "do not change" from "clear the limit".
type PolicyUpdate struct {
	BandwidthDownMbps       *float64
	BandwidthUpMbps         *float64
	DailyQuotaBytes         **int64
	SessionTimeLimitMinutes **int
	AllowedHoursStart       **ClockTime
	AllowedHoursEnd         **ClockTime
	Access24x7              *bool
	BlockedCategories       *[]string
}

// CategoryTable maps a category tag to the keywords that identify it inside a
// resource locator. Loaded once from configuration; read-only afterwards.
type CategoryTable map[string][]string

// DefaultCategoryTable mirrors the keyword sets the enforcement point ships with.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		"P2P":          {"torrent", "bittorrent", "utorrent", "peer", "magnet:"},
		"STREAMING":    {"youtube", "netflix", "twitch", "hulu", "vimeo"},
		"SOCIAL_MEDIA": {"facebook", "instagram", "tiktok", "twitter", "snapchat"},
		"GAMBLING":     {"casino", "poker", "betting", "roulette"},
	}
}

// Match returns the first of the supplied tags whose keywords appear in the
// resource locator, comparing case-insensitively. The boolean reports whether
// any tag matched.
func (t CategoryTable) Match(resource string, tags []string) (string, bool) {
	lowered := strings.ToLower(resource)
	for _, tag := range tags {
		keywords, ok := t.lookup(tag)
		if !ok {
			continue
		}
		for _, keyword := range keywords {
			if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
				return tag, true
			}
		}
	}
	return "", false
}

// Keywords returns the keyword set for a tag, matching case-insensitively.
func (t CategoryTable) Keywords(tag string) ([]string, bool) {
	return t.lookup(tag)
}

func (t CategoryTable) lookup(tag string) ([]string, bool) {
	if keywords, ok := t[tag]; ok {
		return keywords, true
	}
	for candidate, keywords := range t {
		if strings.EqualFold(candidate, tag) {
			return keywords, true
		}
	}
	return nil, false
}
