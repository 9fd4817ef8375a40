package processor

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/normalize"
)

// CleanBusiness normalizes a record's text fields in place.
func CleanBusiness(b *model.Business) {
	b.Name = normalize.Text(b.Name)

	if b.Address != "" {
		b.Address = normalize.Text(b.Address)
	}
	if b.City != "" {
		b.City = normalize.Text(b.City)
	}
	if b.State != "" {
		b.State = normalize.Text(b.State)
	}
	if b.ZipCode != "" {
		b.ZipCode = normalize.Zip(b.ZipCode)
	}
	if b.Phone != "" {
		b.Phone = normalize.Phone(b.Phone)
	}
	if b.Website != "" {
		b.Website = normalize.URL(b.Website)
	}
	if b.Email != "" {
		b.Email = normalize.Email(b.Email)
	}
	if b.Category != "" {
		b.Category = normalize.Text(b.Category)
	}
	if b.CuisineType != "" {
		b.CuisineType = normalize.Text(b.CuisineType)
	}
}

// IsValid reports whether a record has enough well-formed essential data to
// keep after cleaning.
func IsValid(b *model.Business) bool {
	// Name must survive cleaning with at least two characters.
	if utf8.RuneCountInString(b.Name) < 2 {
		return false
	}
	// Some location signal is required.
	if b.Address == "" && b.City == "" && b.State == "" {
		return false
	}
	// Rating, when present, must be in range.
	if b.Rating != nil && (*b.Rating < 0 || *b.Rating > 5) {
		return false
	}
	if b.ReviewCount < 0 {
		return false
	}
	return true
}

// ValidateAndClean normalizes each record in place and drops records that
// are structurally invalid. Dropping is not an error: it is reflected only
// in the reduced output count.
func ValidateAndClean(records []*model.Business) []*model.Business {
	kept := make([]*model.Business, 0, len(records))

	for _, b := range records {
		if b.Name == "" {
			zap.L().Debug("processor: skipping record without name")
			continue
		}
		CleanBusiness(b)
		if !IsValid(b) {
			zap.L().Debug("processor: skipping invalid record", zap.String("name", b.Name))
			continue
		}
		kept = append(kept, b)
	}

	return kept
}
