// Package workspace manages the ephemeral working directory an agent is
// allowed to mutate.
//
// A [Manager] copies a source tree into a uniquely named temporary
// directory and captures a git snapshot of the copy. The snapshot is the
// ground truth for [Manager.Restore], which reverts tracked files to their
// pristine content, and for [Manager.Patch], which renders the drift as a
// unified diff. Files created after setup are never part of the snapshot:
// restore leaves them in place, listings flag them as read-only, and
// [Manager.IsProtected] refuses writes to them.
//
// # Lifecycle
//
// Setup may run once per Manager. Cleanup releases the directory and is
// idempotent; a finalizer-style safety net reclaims the directory if a
// Manager is collected without Cleanup, and [ReleaseAll] sweeps every live
// workspace for signal handlers. After Cleanup the workspace must not be
// used again.
package workspace
