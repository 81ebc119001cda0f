package types

// Version is the canonical project version.
// The CLI reports this version; release tags must match it.
const Version = "0.1.0"
