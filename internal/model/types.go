// Package model defines shared data structures.
package model

import (
	"time"
)

// Config defines practice settings.
type Config struct {
	Name         string
	Words        int
	WordListPath string
	Random       bool
	KeySizes     string
	AdaptHistory bool
	Settle       time.Duration
	FocusWeak    bool
	WeakTop      int
	WeakFactor   float64
	WeakWindow   int
}

// ResultsConfig defines filters and options for the results report.
type ResultsConfig struct {
	Name  string
	Since *time.Time
	Last  int
	Top   int
}

// ResultRecord is a finished test as forwarded to storage.
type ResultRecord struct {
	ID         string
	Name       string
	Accuracy   int
	WPM        int
	Errors     int
	KeyErrors  map[string]int
	Words      int
	StartedAt  time.Time
	EndedAt    time.Time
	DurationMs int64
}

// KeyAggregate sums errors for one key across results.
type KeyAggregate struct {
	Key    string
	Errors int
}
