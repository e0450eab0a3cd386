package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// force the campus timezone (Cal Poly is in San Luis Obispo) because
// collection hosts often aren't: CI runners default to UTC, which would
// shift snapshot tags and cron schedules away from campus time
func Now() time.Time {
	return time.Now().In(Location)
}
