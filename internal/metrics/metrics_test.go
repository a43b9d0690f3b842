package metrics

import "testing"

func TestRegisterIdempotent(t *testing.T) {
	// Must not panic on repeated registration.
	Register()
	Register()

	IncHTTP("/api/v1/bookings/client")
	IncResolverSource("snapshot")
	IncSyncReload("push")
	IncSyncNotice()
}
