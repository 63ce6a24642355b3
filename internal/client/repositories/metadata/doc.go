// Package metadata stores the client's small persisted values (session
// token, role, remembered email, onboarding draft) as key-value pairs.
//
// Two backends implement Repository: SQLiteRepository (default, a single
// "metadata" table created by the client migrations) and RedisRepository
// (keys under a prefix, batches applied in MULTI/EXEC).
package metadata
