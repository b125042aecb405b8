package upload

import "time"

// SetNow overrides the tracker's clock in tests.
func (t *Tracker) SetNow(now func() time.Time) { t.now = now }
