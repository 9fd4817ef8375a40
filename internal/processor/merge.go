package processor

import "github.com/sells-group/directory-cli/internal/model"

// MergeDuplicate folds an absorbed duplicate into its survivor using a
// fill-gap policy: a populated field on the primary is never replaced.
// Empty identity fields (address, city, state, zip) are also filled, so
// later candidates are matched against the survivor's enriched fields.
func MergeDuplicate(primary, dup *model.Business) {
	// Identity gaps.
	if primary.Address == "" {
		primary.Address = dup.Address
	}
	if primary.City == "" {
		primary.City = dup.City
	}
	if primary.State == "" {
		primary.State = dup.State
	}
	if primary.ZipCode == "" {
		primary.ZipCode = dup.ZipCode
	}

	// Contact gaps.
	if primary.Phone == "" {
		primary.Phone = dup.Phone
	}
	if primary.Website == "" {
		primary.Website = dup.Website
	}
	if primary.Email == "" && dup.Email != "" {
		primary.Email = dup.Email
		primary.EmailValidated = dup.EmailValidated
	}

	// Source-specific slots, one per source, gap-fill only.
	for source, ref := range dup.SourceRefs {
		if _, ok := primary.SourceRefs[source]; !ok {
			primary.SetRef(source, ref)
		}
	}

	for _, source := range dup.DataSources {
		primary.AddSource(source)
	}

	// The more-reviewed source is presumed more reliable.
	if dup.Rating != nil && (primary.Rating == nil || dup.ReviewCount > primary.ReviewCount) {
		primary.Rating = dup.Rating
	}
	if dup.ReviewCount > primary.ReviewCount {
		primary.ReviewCount = dup.ReviewCount
	}

	primary.Features = unionStrings(primary.Features, dup.Features)
	primary.Photos = unionStrings(primary.Photos, dup.Photos)

	for _, r := range dup.Reviews {
		primary.AddReview(r)
	}

	if primary.Hours == nil {
		primary.Hours = dup.Hours
	}

	// Last merged wins, regardless of which timestamp is numerically later.
	// Possibly a naive overwrite rather than a max comparison; kept as-is
	// pending product-owner review and pinned by a test.
	primary.LastUpdated = dup.LastUpdated
}

// MergeDetails combines a detail-page fetch into a record already known to
// represent the same entity. Unlike the dedup merge, scalar text fields use
// a prefer-longer policy: whichever non-empty value is textually longer is
// treated as more complete.
func MergeDetails(base, detail *model.Business) {
	base.Name = longerOf(base.Name, detail.Name)
	base.Address = longerOf(base.Address, detail.Address)
	base.City = longerOf(base.City, detail.City)
	base.State = longerOf(base.State, detail.State)
	base.ZipCode = longerOf(base.ZipCode, detail.ZipCode)

	base.Phone = longerOf(base.Phone, detail.Phone)
	base.Website = longerOf(base.Website, detail.Website)
	base.Email = longerOf(base.Email, detail.Email)

	base.Category = longerOf(base.Category, detail.Category)
	base.CuisineType = longerOf(base.CuisineType, detail.CuisineType)
	base.PriceLevel = longerOf(base.PriceLevel, detail.PriceLevel)

	if detail.Latitude != nil && detail.Longitude != nil {
		base.Latitude = detail.Latitude
		base.Longitude = detail.Longitude
	}

	// Detail pages carry fresher popularity data: average the ratings when
	// both exist, otherwise adopt the detail value.
	if detail.Rating != nil {
		if base.Rating != nil {
			avg := (*base.Rating + *detail.Rating) / 2
			base.Rating = &avg
		} else {
			base.Rating = detail.Rating
		}
	}
	if detail.ReviewCount > base.ReviewCount {
		base.ReviewCount = detail.ReviewCount
	}

	if base.Hours == nil {
		base.Hours = detail.Hours
	}

	// Detail fetches are authoritative for their own source slots.
	for source, ref := range detail.SourceRefs {
		base.SetRef(source, ref)
	}

	for _, source := range detail.DataSources {
		base.AddSource(source)
	}

	base.Features = unionStrings(base.Features, detail.Features)
	base.Photos = unionStrings(base.Photos, detail.Photos)

	for _, r := range detail.Reviews {
		base.AddReview(r)
	}

	base.LastUpdated = detail.LastUpdated
}

// longerOf prefers the textually longer of two values; an empty candidate
// never replaces a populated one.
func longerOf(base, candidate string) string {
	if candidate != "" && (base == "" || len(candidate) > len(base)) {
		return candidate
	}
	return base
}

// unionStrings appends unseen items from extra to base, preserving order.
func unionStrings(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			base = append(base, s)
		}
	}
	return base
}
