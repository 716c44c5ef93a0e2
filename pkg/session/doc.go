// Package session implements an in-process, file-backed session store for a
// long-running server: sessions live in memory for fast lookup, changed
// sessions are written to disk lazily by a background loop, idle sessions are
// evicted or collected, and persisted sessions are reloaded at startup.
//
// # Architecture
//
// Request handlers only talk to the Manager. Create, Attach and Find work on
// the in-memory Store and draw blank sessions from a Pool; none of them does
// file I/O. The Persister owns every file operation and runs off the request
// path, driven by Manager.Service on a fixed cadence.
//
//	 request handlers              background loop (Manager.Run)
//	┌────────────────┐            ┌──────────────────────────────┐
//	│ Create / Find  │            │ Service = CollectGarbage      │
//	│ Attach         │            │         + Persister.Persist   │
//	└───────┬────────┘            └──────────────┬───────────────┘
//	        │  sessions + checksums              │
//	        ▼                                    ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│ Store (one lock over both mappings)                          │
//	└─────────────────────────────────────────────────────────────┘
//	        ▲ blank sessions                      │ sess_<id> files
//	┌───────┴────────┐                   ┌───────▼────────┐
//	│ Pool           │                   │ file.Storage   │
//	└────────────────┘                   └────────────────┘
//
// # Dirty tracking
//
// Every stored session carries the Checksum recorded at its last successful
// write. A persistence pass recomputes the checksum over the id, the cookie
// attributes and the data bag (never the activity timestamp) and writes the
// file only when the two differ. Running a pass twice without mutations
// writes nothing the second time.
//
// For each stored id a pass takes exactly one action:
//
//   - destroyed (id cleared): remove the file and the entry
//   - changed: write the file, record the new checksum
//   - unchanged but idle past the inactivity timeout: write the file, drop
//     the entry from memory and keep the file
//   - otherwise: nothing
//
// A changed session that is also idle is written before it is dropped.
// Write failures are reported per id; the pass continues and the session is
// retried on the next pass because its checksum is still stale.
//
// # Usage
//
//	manager, err := session.New(
//	    session.WithConfig(cfg),
//	    session.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	defer manager.Close()
//
//	// Reload persisted sessions before accepting traffic
//	if err := manager.Initialize(ctx); err != nil {
//	    return err
//	}
//	go manager.Run(ctx)
//
//	func handle(id string) {
//	    sess, ok := manager.Find(id)
//	    if !ok {
//	        sess, _ = manager.Create(ctx, "", "")
//	    }
//	    sess.Set("cart", items)
//	}
//
// # Configuration
//
// Config fields carry env tags (SESSION_SAVE_PATH, SESSION_FILE_PREFIX,
// SESSION_INACTIVITY_TIMEOUT, SESSION_GC_PROBABILITY, ...) and can be loaded
// with the config package. DefaultConfig returns the same defaults.
//
// # Error Handling
//
//   - ErrInvalidSession   – nil session or empty id passed to Attach
//   - ErrPoolExhausted    – the pool was not refilled within the acquire timeout
//   - ErrPoolClosed       – the manager was closed while Create was waiting
//   - ErrDirectoryBootstrap – Initialize could not prepare the save directory
//   - ErrPersistFailed    – matched by every *PersistError returned from a pass
//   - ErrCorruptSession   – a session file could not be decoded; it is removed
package session
