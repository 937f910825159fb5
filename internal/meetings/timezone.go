package meetings

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone rules for hosts without a zoneinfo database
)

// timeZoneNames maps Webex time zone IDs to IANA zone names. IDs missing here
// are still sent to the service but times cannot be converted into them.
var timeZoneNames = map[int]string{
	2:  "Pacific/Honolulu",
	3:  "America/Anchorage",
	4:  "America/Los_Angeles",
	5:  "America/Phoenix",
	6:  "America/Denver",
	7:  "America/Chicago",
	11: "America/New_York",
	21: "Europe/London",
}

// TimeZoneLocation returns the location of a Webex time zone ID. A zero or
// negative ID means DefaultTimeZoneID.
func TimeZoneLocation(id int) (*time.Location, bool) {
	name, ok := timeZoneNames[timeZoneOrDefault(id)]
	if !ok {
		return nil, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

func zoneOrLocal(id int) *time.Location {
	if loc, ok := TimeZoneLocation(id); ok {
		return loc
	}
	return time.Local
}

// FormatDateIn formats t as wall-clock time of the Webex time zone id. For
// zones without a known location t is formatted in its own location.
func FormatDateIn(t time.Time, id int) string {
	if loc, ok := TimeZoneLocation(id); ok {
		t = t.In(loc)
	}
	return FormatDate(t)
}

// ParseTimeInputIn reads a user-supplied time for the Webex time zone id.
// RFC3339 values are converted into the zone. DateLayout values are taken as
// wall-clock time of the zone, or of the local zone when id has no known
// location. An RFC3339 value for such a zone is an error.
func ParseTimeInputIn(s string, id int) (time.Time, error) {
	loc, known := TimeZoneLocation(id)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if !known {
			return time.Time{}, fmt.Errorf("%w: time zone %d has no known offset, give %q as MM/DD/YYYY HH:MM:SS", ErrInvalidInput, timeZoneOrDefault(id), s)
		}
		return t.In(loc), nil
	}
	t, err := ParseDate(s, zoneOrLocal(id))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither RFC3339 nor MM/DD/YYYY HH:MM:SS", ErrInvalidInput, s)
	}
	return t, nil
}
