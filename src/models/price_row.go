package models

import "time"

// MPriceRow is one row of the combined dataset as read by analytics.
type MPriceRow struct {
	Symbol string
	Date   time.Time
	Month  string
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *float64
}

// MSectorMapping maps an upper-cased ticker to its sector.
type MSectorMapping map[string]string
