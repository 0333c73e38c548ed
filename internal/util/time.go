package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider renders timestamps in the configured timezone.
type TimeProvider struct {
	mu       sync.RWMutex
	location *time.Location
	now      func() time.Time
}

var (
	timeMu             sync.Mutex
	globalTimeProvider *TimeProvider
)

// NewTimeProvider resolves timezone; "" and "Local" mean the host zone.
func NewTimeProvider(timezone string) (*TimeProvider, error) {
	tp := &TimeProvider{now: time.Now}
	if err := tp.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return tp, nil
}

// InitializeTimeProvider replaces the process-wide provider. On error the
// previous provider stays in place.
func InitializeTimeProvider(timezone string) error {
	tp, err := NewTimeProvider(timezone)
	if err != nil {
		return err
	}
	timeMu.Lock()
	globalTimeProvider = tp
	timeMu.Unlock()
	return nil
}

// GetTimeProvider returns the process-wide provider, defaulting to Local.
func GetTimeProvider() *TimeProvider {
	timeMu.Lock()
	defer timeMu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local, now: time.Now}
	}
	return globalTimeProvider
}

func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q (try Local, UTC or Europe/London): %w", timezone, err)
		}
		loc = l
	}
	tp.mu.Lock()
	tp.location = loc
	tp.mu.Unlock()
	return nil
}

// SetClock overrides the time source.
func (tp *TimeProvider) SetClock(now func() time.Time) {
	tp.mu.Lock()
	tp.now = now
	tp.mu.Unlock()
}

func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured zone.
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.now().In(tp.location)
}

func (tp *TimeProvider) Format(t time.Time, layout string) string {
	return t.In(tp.Location()).Format(layout)
}
