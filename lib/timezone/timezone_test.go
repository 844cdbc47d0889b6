package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEasternConversion(t *testing.T) {
	cases := []struct {
		utc        time.Time
		expectDate string
		expectTime string
	}{
		// EST, UTC-5
		{
			utc:        time.Date(2025, time.February, 14, 10, 0, 0, 0, time.UTC),
			expectDate: "2025-02-14",
			expectTime: "05:00",
		},
		// midnight UTC rolls back to the previous Eastern day
		{
			utc:        time.Date(2025, time.February, 14, 0, 30, 0, 0, time.UTC),
			expectDate: "2025-02-13",
			expectTime: "19:30",
		},
		// EDT, UTC-4
		{
			utc:        time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC),
			expectDate: "2025-07-04",
			expectTime: "08:00",
		},
	}

	for _, test := range cases {
		local := test.utc.In(Location)
		require.Equal(t, test.expectDate, local.Format("2006-01-02"))
		require.Equal(t, test.expectTime, local.Format("15:04"))
	}
}
