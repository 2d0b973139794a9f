package prhost

// Exported aliases for testing internal helpers from the
// prhost_test package.

// ParseRecordsForTest exposes parseRecords.
var ParseRecordsForTest = parseRecords

// BranchOfForTest exposes branchOf.
var BranchOfForTest = branchOf
