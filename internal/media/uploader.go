// Package media uploads files to the external media host.
//
// The rest of the system depends only on the Uploader interface: given a
// local file, return a durable public URL or fail. Tests substitute a fake.
package media

import (
	"context"
)

// UploadRequest describes one file to push to the media host.
type UploadRequest struct {
	LocalPath string // Path to the spooled file on local disk
	FileName  string // Client-supplied name, used for the remote name
	Folder    string // Remote folder, e.g. "coverImages" or "pdfs"
	Format    string // File format hint, e.g. "jpg" or "pdf"
}

// UploadResult is the media host's answer. SecureURL is the only field the
// core depends on; an empty value means the upload did not yield a usable URL.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
}

// Uploader pushes a local file to durable public storage.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}
