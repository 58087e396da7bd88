// Package team tracks which team (sect) the user is acting as.
//
// A Manager holds three observable values: the current team, the full team
// list and the view mode. The list is fetched from the backend and replaced
// wholesale on every load; the current selection and the view mode are
// persisted so they survive restarts.
//
// # Lifecycle
//
// A Manager starts uninitialized. Init restores the persisted view mode and
// is a no-op on later calls. Operations that need the backend or storage
// return common.ErrNotInitialized until Init has run. Loading teams is a
// separate explicit call.
//
// # Selection
//
// After each load the current team is chosen in this order: the persisted
// team id if it is in the new list, the team flagged isCurrent, the team
// flagged isDefault, otherwise none. The chosen team is persisted; when none
// is chosen the persisted selection is dropped.
//
// # Switching
//
// SwitchTeam applies two transitions. When the backend accepts the switch,
// the current team is set from the already cached list, persisted and
// published to subscribers. Then the list is reloaded to refresh counters,
// and the reloaded selection is published. A failed reload is logged and
// leaves the first transition in place.
//
// Concurrent mutations are not serialized against each other; the last
// write wins.
package team
