package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

// force timezone to be US Eastern since the scheduler's enrollment
// centers present all user-facing dates/times in Eastern, regardless
// of where this process happens to run
func Now() time.Time {
	return time.Now().In(Location)
}
