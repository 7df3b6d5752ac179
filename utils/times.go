package utils

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/unibalancer/paca-keeper-go/model"
)

var (
	decimalTimePattern = regexp.MustCompile(`(?i)^([\d.]+)(?:\s*([ap])m?)?$`)
	clockTimePattern   = regexp.MustCompile(`(?i)^(\d+)(?::(\d+))?(?:\s*([ap])m?)?$`)
)

// amOrPmHour adjusts an hour value for an optional am/pm suffix. Hours over 24
// reset to 0, matching the long-standing behavior of deployed configs.
func amOrPmHour(hours float64, suffix string) float64 {
	if suffix != "" {
		if strings.EqualFold(suffix, "p") {
			hours += 12
		} else if hours == 12 {
			// 12 AM is really 0.
			hours = 0
		}
	}

	if hours > 24 {
		hours = 0
	}

	return hours
}

// ParseTimes converts human time-of-day strings ("9am", "14:30", "9.5pm") into
// slots sorted ascending by minute of day. A single malformed entry fails the
// whole parse.
func ParseTimes(raw []string) ([]model.TimeOfDay, error) {
	times := make([]model.TimeOfDay, 0, len(raw))

	for _, entry := range raw {
		trimmed := strings.TrimSpace(entry)

		if match := decimalTimePattern.FindStringSubmatch(trimmed); match != nil {
			hours, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				return nil, fmt.Errorf("cannot parse unrecognized time %q", entry)
			}

			hours = amOrPmHour(hours, match[2])

			// The fractional part becomes minutes: 9.5 is 9:30.
			minutes := int(math.Round(60 * math.Mod(hours, 1)))
			if minutes > 59 {
				minutes = 59
			}

			times = append(times, model.TimeOfDay{
				Hours:   int(math.Floor(hours)),
				Minutes: minutes,
			})
			continue
		}

		if match := clockTimePattern.FindStringSubmatch(trimmed); match != nil {
			hours, err := strconv.Atoi(match[1])
			if err != nil {
				return nil, fmt.Errorf("cannot parse unrecognized time %q", entry)
			}

			hours = int(amOrPmHour(float64(hours), match[3]))

			minutes := 0
			if match[2] != "" {
				minutes, _ = strconv.Atoi(match[2])
				if minutes > 59 {
					return nil, fmt.Errorf("cannot parse unrecognized time %q", entry)
				}
			}

			times = append(times, model.TimeOfDay{
				Hours:   hours,
				Minutes: minutes,
			})
			continue
		}

		return nil, fmt.Errorf("cannot parse unrecognized time %q", entry)
	}

	sort.Slice(times, func(i, j int) bool {
		return times[i].MinuteOfDay() < times[j].MinuteOfDay()
	})

	return times, nil
}
