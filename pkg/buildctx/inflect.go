package buildctx

import "strings"

// DefineKey returns the header define for a dependency identifier,
// e.g. "oss-audio-4front" -> "HAVE_OSS_AUDIO_4FRONT".
func DefineKey(id string) string {
	return strings.ToUpper("have_" + StorageKey(id))
}

// StorageKey returns the uselib store name for a dependency identifier.
func StorageKey(id string) string {
	return strings.ReplaceAll(id, "-", "_")
}
