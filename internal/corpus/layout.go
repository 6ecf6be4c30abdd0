package corpus

import (
	"fmt"
	"path/filepath"
	"time"
)

// CompressedSuffix is appended to batch file names when compression is on
const CompressedSuffix = ".zst"

// BatchDir returns {root}/{service}/{YYYY}/{MM}/{DD}
func BatchDir(root, service string, day time.Time) string {
	return filepath.Join(root, service, day.Format("2006"), day.Format("01"), day.Format("02"))
}

// BatchFileName returns logs_{service}_{YYYYMMDD}.json
func BatchFileName(service string, day time.Time) string {
	return fmt.Sprintf("logs_%s_%s.json", service, day.Format("20060102"))
}

// BatchPath joins BatchDir and BatchFileName, adding the compressed suffix if asked
func BatchPath(root, service string, day time.Time, compressed bool) string {
	name := BatchFileName(service, day)
	if compressed {
		name += CompressedSuffix
	}
	return filepath.Join(BatchDir(root, service, day), name)
}
