package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stamp makes run output names unique: second-resolution local time, the
// microsecond, and the first 8 hex digits of the run id.
func Stamp(t time.Time, runID uuid.UUID) string {
	hex := strings.ReplaceAll(runID.String(), "-", "")
	return fmt.Sprintf("%s_%06d_%s", t.Format("20060102_150405"), t.Nanosecond()/int(time.Microsecond), hex[:8])
}

// Paths are the files one run writes into the reports directory.
type Paths struct {
	PDF      string
	Text     string
	Workbook string
	Manifest string
}

// PathsFor returns the output paths for a stamp.
func PathsFor(dir, stamp string) Paths {
	return Paths{
		PDF:      filepath.Join(dir, "report_"+stamp+".pdf"),
		Text:     filepath.Join(dir, "analysis_"+stamp+".txt"),
		Workbook: filepath.Join(dir, "stats_"+stamp+".xlsx"),
		Manifest: filepath.Join(dir, "run_"+stamp+".json"),
	}
}
