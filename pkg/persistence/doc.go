// Package persistence provides atomic, cross-process-safe file writes for
// the duskward player-record store (spec.md §6: "on-disk player
// persistence... simple JSON dump on entity leave").
//
// # Atomic Writes
//
// AtomicWriteFile replaces a target file's contents without ever leaving
// it partially written:
//
//  1. Data is written to a temporary file in the same directory
//  2. The temporary file is synced to disk
//  3. The temporary file is renamed onto the target (atomic on POSIX)
//
// # File Locking
//
// FileLock guards a path with flock syscalls, for the case where more than
// one coordinator process points at the same data directory:
//
//	lock, err := persistence.NewFileLock(path)
//	if err != nil {
//	    return err
//	}
//	defer lock.Close()
//	if err := lock.Lock(); err != nil {
//	    return err
//	}
//	defer lock.Unlock()
//
// TryLock offers a non-blocking variant for callers that would rather fail
// fast than wait on a contended record.
//
// # Platform Support
//
// File locking uses Unix flock syscalls.
package persistence
