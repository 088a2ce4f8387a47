package catalog

import (
	"time"

	"github.com/turbolytics/arquivo/internal/period"
)

/*
The catalog is a record of what an export contains.
It lets whoever picks the export up verify it against the backend
without reading the data file.
*/

// Catalog describes one export of uploaded-file records
type Catalog struct {
	ID          string        `json:"id"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Source      string        `json:"source"`
	Period      period.Period `json:"period"`
	Format      string        `json:"format"`
	DataKey     string        `json:"data_key"`
	NumPages    int           `json:"num_pages"`
	NumRecords  int           `json:"num_records"`
	ReportTotal int           `json:"report_total"`
	Completed   bool          `json:"completed"`
}
