package processor

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/normalize"
	"github.com/sells-group/directory-cli/internal/similarity"
)

// Duplicate predicate thresholds.
const (
	nameThreshold    = 0.80
	addressThreshold = 0.70
	cityThreshold    = 0.80
)

// Dedupe clusters duplicate records and returns the survivors in input
// order. Each absorbed duplicate is merged into its survivor, flagged
// IsDuplicate, and dropped from the output.
//
// Matching stops at the first hit and survivors are scanned in insertion
// order, so output composition is sensitive to input order. The predicate is
// evaluated against the survivor's current fields, including values filled
// in by earlier merges.
func Dedupe(records []*model.Business) []*model.Business {
	survivors := make([]*model.Business, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, b := range records {
		// Exact-duplicate fast path.
		sig := Signature(b)
		if _, ok := seen[sig]; ok {
			b.IsDuplicate = true
			continue
		}

		absorbed := false
		for _, s := range survivors {
			if AreDuplicates(b, s) {
				b.IsDuplicate = true
				MergeDuplicate(s, b)
				absorbed = true
				break
			}
		}

		if !absorbed {
			seen[sig] = struct{}{}
			survivors = append(survivors, b)
		}
	}

	if removed := len(records) - len(survivors); removed > 0 {
		zap.L().Info("processor: duplicates removed", zap.Int("count", removed))
	}

	return survivors
}

// Signature builds the exact-duplicate fast-path key: a hash of the
// punctuation-insensitive name and address plus the lowercased city.
func Signature(b *model.Business) string {
	key := normalize.AlphaNum(b.Name) + "_" + normalize.AlphaNum(b.Address) + "_" + strings.ToLower(b.City)
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// AreDuplicates reports whether two records refer to the same establishment.
// Names must be very similar; address and city are each compared only when
// both sides have a value; a missing field never disqualifies.
func AreDuplicates(a, b *model.Business) bool {
	if similarity.Ratio(a.Name, b.Name) < nameThreshold {
		return false
	}
	if a.Address != "" && b.Address != "" &&
		similarity.Ratio(a.Address, b.Address) < addressThreshold {
		return false
	}
	if a.City != "" && b.City != "" &&
		similarity.Ratio(a.City, b.City) < cityThreshold {
		return false
	}
	return true
}
