package civiltime

import (
	"fmt"
	"time"

	// Zone data is embedded so the civil zone resolves on hosts without tzdata.
	_ "time/tzdata"
)

// DefaultZone is the civil zone used when no timezone is configured.
const DefaultZone = "Asia/Seoul"

// Layouts accepted and produced by Zone.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
	StampLayout = "2006-01-02 15:04:05"
)

// Instant is the outcome of converting a civil date-time to unix seconds.
// Valid is false when the input could not be parsed.
type Instant struct {
	Unix  int64
	Valid bool
}

// At returns a valid Instant for the given unix seconds.
func At(unix int64) Instant {
	return Instant{Unix: unix, Valid: true}
}

// Zone converts between wall-clock strings in a single fixed location and
// unix timestamps.
type Zone struct {
	loc *time.Location
}

// LoadZone resolves an IANA zone name. An empty name selects DefaultZone.
func LoadZone(name string) (Zone, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("failed to load time zone %q: %w", name, err)
	}
	return Zone{loc: loc}, nil
}

// NewZone wraps an already resolved location.
func NewZone(loc *time.Location) Zone {
	return Zone{loc: loc}
}

// Name returns the zone's IANA name, or "" for the zero Zone.
func (z Zone) Name() string {
	if z.loc == nil {
		return ""
	}
	return z.loc.String()
}

// Location returns the underlying location. Nil for the zero Zone.
func (z Zone) Location() *time.Location {
	return z.loc
}

// ToEpoch parses a "YYYY-MM-DD HH:MM:SS" string in the zone.
func (z Zone) ToEpoch(civil string) Instant {
	if z.loc == nil {
		return Instant{}
	}
	ts, err := time.ParseInLocation(StampLayout, civil, z.loc)
	if err != nil {
		return Instant{}
	}
	return At(ts.Unix())
}

// Compose converts a "YYYY-MM-DD" date and "HH:MM" clock pair.
func (z Zone) Compose(date, clock string) Instant {
	return z.ToEpoch(fmt.Sprintf("%s %s:00", date, clock))
}

// FromEpoch formats unix seconds with the given layout. It returns "" when
// the zone is unset or the layout is empty.
func (z Zone) FromEpoch(unix int64, layout string) string {
	if z.loc == nil || layout == "" {
		return ""
	}
	return time.Unix(unix, 0).In(z.loc).Format(layout)
}
