// Package sessions persists the auth provider session between console runs.
//
// SQLiteStore seals the session with AES-GCM under a key derived (argon2id)
// from a configured passphrase and a random salt kept next to it in the
// metadata table. Only the salt survives Clear, so signing out leaves no
// token material on disk. MemoryStore keeps the session for the process
// lifetime only and is used when no passphrase is configured.
package sessions
