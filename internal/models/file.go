package models

// FileStatus reports the outcome of a single brochure upload.
type FileStatus string

const (
	FileUploaded FileStatus = "uploaded"
	FileFailed   FileStatus = "failed"
)

// UploadedFile tracks one brochure submitted through the upload control.
// Files are identified by their position in the session's ordered list;
// removal reindexes the remainder so indices stay dense.
type UploadedFile struct {
	Filename    string     `json:"filename"`
	StoragePath string     `json:"storage_path,omitempty"`
	Status      FileStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	Pages       int        `json:"pages,omitempty"`
}
