// Package rfc822date formats Unix timestamps as RFC 822 section 5 date
// strings, the form used by the Date: header (RFC 5322 keeps RFC 822's
// date-time grammar).
package rfc822date

import "time"

// layout omits the optional day-of-week and always renders the numeric
// zone form (e.g. "+0000"), which is what RFC 5322 requires and what
// every MTA in the wild expects.
const layout = "02 Jan 2006 15:04:05 -0700"

// Format renders the given Unix timestamp (seconds since the epoch, UTC)
// as an RFC 822 date string, e.g. "01 Jan 1970 00:00:00 +0000".
func Format(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format(layout)
}

// Now renders the current wall-clock time the same way Format does.
func Now() string {
	return Format(time.Now().Unix())
}
