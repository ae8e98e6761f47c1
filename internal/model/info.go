package model

import "time"

// MimeTypeDirectory marks a document that is a folder.
const MimeTypeDirectory = "inode/directory"

// DocumentInfo is the metadata shown by the inspector panel.
// It merges the catalogue row with the live object attributes from storage.
type DocumentInfo struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Summary      string    `json:"summary,omitempty"`
	StoragePath  string    `json:"storage_path"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
	CreatedAt    time.Time `json:"created_at"`
	DownloadURL  string    `json:"download_url,omitempty"`
}

// IsDirectory reports whether the document is a folder.
func (d *DocumentInfo) IsDirectory() bool {
	return d.MimeType == MimeTypeDirectory
}

// InfoFromDocument seeds a DocumentInfo from a catalogue row.
func InfoFromDocument(doc *Document) *DocumentInfo {
	return &DocumentInfo{
		ID:           doc.ID,
		DisplayName:  doc.Filename,
		MimeType:     doc.ContentType,
		Size:         doc.Size,
		Summary:      doc.Summary,
		StoragePath:  doc.StoragePath,
		LastModified: doc.UpdatedAt,
		CreatedAt:    doc.CreatedAt,
	}
}
