package registry

// Exported aliases for testing internal helpers from the
// registry_test package.

// MapLookupErrorForTest exposes mapLookupError.
var MapLookupErrorForTest = mapLookupError
