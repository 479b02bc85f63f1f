package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"examLens/domain"
)

// Fingerprint hashes a dataset into a stable identity. Records are sorted
// into a canonical order first, so row order in the upload never changes
// the fingerprint. Combined with the mapping-store version this keys
// external report memoization.
func Fingerprint(records []domain.DeductionRecord) string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%g\x00%s\x00%s\x00%s",
			rec.StudentID,
			rec.ExamID,
			rec.QuestionID,
			rec.RubricItem,
			rec.PointsLost,
			rec.Topic,
			rec.SectionID,
			rec.TAID,
		)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
