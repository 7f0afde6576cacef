//go:build nogoogle

package model

// Builds tagged nogoogle drop the Gemini client; the provider stays
// unregistered and selecting it fails with ErrCapabilityMissing.
const googleAvailable = false
