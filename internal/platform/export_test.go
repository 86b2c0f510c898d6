package platform

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ResolveFor exports resolve for testing OS branches off-host.
var ResolveFor = resolve
