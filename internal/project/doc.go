// Package project opens, saves and closes one canvas project.
//
// A project lives in its own directory under a root:
//
//	<root>/<id>/project_data.json   scene document (Data)
//	<root>/<id>/undo_history.json   history blob, when the file store is used
//
// Opening a project never fails because of its history. A corrupt or
// unreadable history blob is discarded and recorded as a Warning; the scene
// still loads with empty stacks.
//
// With autosave enabled every history change hands a snapshot to a
// persist.Autosaver, which writes it in the background. Close flushes it.
package project
