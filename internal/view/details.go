package view

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"docinspect/internal/inspector"
	"docinspect/internal/model"
)

const timeLayout = "2006-01-02 15:04 MST"

// Row is one label/value line in the details view.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Details lists the document's properties.
type Details struct {
	loc *time.Location
	now func() time.Time

	mu   sync.RWMutex
	rows []Row
	set  bool
}

var _ inspector.DetailsView = (*Details)(nil)

// NewDetails returns an empty details view that formats times in loc.
func NewDetails(loc *time.Location) *Details {
	if loc == nil {
		loc = time.UTC
	}
	return &Details{loc: loc, now: time.Now}
}

func (d *Details) Update(info *model.DocumentInfo) {
	rows := []Row{{Label: "Type", Value: TypeLabel(info.MimeType)}}
	if !info.IsDirectory() {
		rows = append(rows, Row{Label: "Size", Value: formatSize(info.Size)})
	}
	if !info.LastModified.IsZero() {
		rows = append(rows, Row{Label: "Modified", Value: d.formatTime(info.LastModified)})
	}
	if !info.CreatedAt.IsZero() {
		rows = append(rows, Row{Label: "Created", Value: d.formatTime(info.CreatedAt)})
	}
	if info.StoragePath != "" {
		rows = append(rows, Row{Label: "Location", Value: info.StoragePath})
	}
	if info.Summary != "" {
		rows = append(rows, Row{Label: "Summary", Value: info.Summary})
	}
	if info.DownloadURL != "" {
		rows = append(rows, Row{Label: "Download", Value: info.DownloadURL})
	}

	d.mu.Lock()
	d.rows = rows
	d.set = true
	d.mu.Unlock()
}

// Rows returns a copy of the current rows and whether the view was ever updated.
func (d *Details) Rows() ([]Row, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Row(nil), d.rows...), d.set
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n)) + " (" + humanize.Comma(n) + " bytes)"
}

func (d *Details) formatTime(t time.Time) string {
	return t.In(d.loc).Format(timeLayout) + " (" + humanize.RelTime(t, d.now(), "ago", "from now") + ")"
}
