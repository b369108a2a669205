// Package config loads trellis configuration.
//
// Configuration is a CUE (or JSON) file unified with the embedded #Config
// schema, which supplies defaults and rejects unknown fields. Environment
// variables then override file values, and the result is checked against
// the schema again, so an override that breaks a constraint is reported the
// same way a bad file is:
//
//	TRELLIS_HISTORY_LIMIT    history.limit
//	TRELLIS_MERGE_WINDOW     history.merge_window
//	TRELLIS_SEAL_RESTORED    history.seal_restored
//	TRELLIS_STORE            storage.backend
//	TRELLIS_ROOT             storage.root
//	TRELLIS_DB               storage.db
//	TRELLIS_AUTOSAVE         storage.autosave
//	TRELLIS_LOG_LEVEL        log.level
//	TRELLIS_LOG_FORMAT       log.format
package config
