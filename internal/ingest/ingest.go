package ingest

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Queued  uint32
	Skipped uint32
	Failed  uint32
}

// FileError records a path the walk could not read or queue.
type FileError struct {
	Path string
	Err  string
}

// DirectoryResult is what EnqueueDirectory reports back.
type DirectoryResult struct {
	Stats  DirStats
	Paths  []string
	Errors []FileError
}
