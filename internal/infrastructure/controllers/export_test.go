package controllers

// ResolveTokenFromEnv exports resolveTokenFromEnv for testing.
var ResolveTokenFromEnv = resolveTokenFromEnv //nolint:gochecknoglobals // test export

// LoadSettings exports loadSettings for testing.
var LoadSettings = loadSettings //nolint:gochecknoglobals // test export
