package graft

import "github.com/jward/graft/internal/store"

// Public type aliases for internal store types used in the Tracker API.
// These are Go type aliases (=) — identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type Anchor = store.Anchor
