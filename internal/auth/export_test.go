package auth

import "time"

// SetAdminKeyClock overrides the manager's clock in tests.
func SetAdminKeyClock(m *AdminKeyManager, now func() time.Time) {
	m.now = now
}
