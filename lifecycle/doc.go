// Package lifecycle tracks host wrappers that reference natively-owned
// sub-objects.
//
// The engine frees a file and all of its sub-objects in one synchronous
// step. Go's collector runs on its own schedule and may keep wrapper objects
// reachable long after that, so wrappers can never be trusted to notice the
// free on their own. The Tracker is the registry that closes this gap: every
// wrapper is registered under the native identity it proxies, and the owner
// severs them all before the free happens.
//
//	tracker.Register(fileID, tagID, tagWrapper)
//	...
//	tracker.ReleaseParent(fileID) // invalidates every child wrapper
//	// only now is the native file freed
//
// UnlinkAndUntrack is a safe no-op for identities that were never
// registered, so owners can release unconditionally.
//
// Nothing in this package sets finalizers. Explicit release through the
// tracker is the single authoritative invalidation mechanism; collector
// timing never triggers a native free.
package lifecycle
