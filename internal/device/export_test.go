package device

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ParseAVFoundation exports parseAVFoundation for testing.
var ParseAVFoundation = parseAVFoundation

// ParseDShow exports parseDShow for testing.
var ParseDShow = parseDShow

// ParseBracketList exports parseBracketList for testing.
var ParseBracketList = parseBracketList

// OutputRunner exports outputRunner interface for testing.
type OutputRunner = outputRunner
