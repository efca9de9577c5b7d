package record

import (
	"fmt"
	"regexp"
)

// partNumberPattern is the strict production part-number format. Records that
// pass Validate but miss this pattern get a warning, not an error.
var partNumberPattern = regexp.MustCompile(`^[A-Z0-9]{10,}$`)

// versionPattern is the expected firmware version layout. Deviations are
// warnings only, since pre-release builds use looser naming.
var versionPattern = regexp.MustCompile(`^V\d+\.\d+\.\d+\.\d+_\d+\.\d+\.\d+\.\d+E\d+\.\d+.*$`)

// minDescriptionLength below which a quality warning is raised.
const minDescriptionLength = 5

// QualityReport is the outcome of assessing one record against the advisory
// rule set. Score ranges 0-100.
type QualityReport struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Score       float64  `json:"score"`
}

// Assess scores a record against the advisory quality rules and flags likely
// duplicates within the given dataset. The record should already be
// normalized.
func Assess(r Record, dataset []Record) QualityReport {
	report := QualityReport{Valid: true}

	if err := r.Validate(); err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, err.Error())
	} else {
		report.Score += 40
	}

	if partNumberPattern.MatchString(r.PartNumber) {
		report.Score += 15
	} else {
		report.Warnings = append(report.Warnings,
			"part number does not match the production format (10+ uppercase alphanumerics)")
	}

	if validStation(r.Station) {
		report.Score += 15
	}

	if versionPattern.MatchString(r.Version) {
		report.Score += 15
	} else {
		report.Warnings = append(report.Warnings, "version does not match the expected firmware layout")
	}

	if len(r.Description) >= minDescriptionLength {
		report.Score += 15
	} else {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("description is short, at least %d characters recommended", minDescriptionLength))
	}

	if dups := Duplicates(r, dataset); len(dups) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d similar record(s) in the dataset", len(dups)))
	}

	switch {
	case report.Score >= 90:
		report.Suggestions = append(report.Suggestions, "record quality is good")
	case report.Score >= 70:
		report.Suggestions = append(report.Suggestions, "record quality is acceptable, consider completing weak fields")
	default:
		report.Suggestions = append(report.Suggestions, "review and complete the record before syncing")
	}

	return report
}

// AssessDataset scores every stored record against the rest of the dataset.
// Each record is excluded from its own duplicate scan by ID; comparing the
// record values would be unreliable once timestamps have round-tripped
// through the database.
func AssessDataset(stored []Stored) []QualityReport {
	reports := make([]QualityReport, 0, len(stored))
	for _, s := range stored {
		others := make([]Record, 0, len(stored)-1)
		for _, other := range stored {
			if other.ID == s.ID {
				continue
			}
			others = append(others, other.Record)
		}
		reports = append(reports, Assess(s.Record, others))
	}
	return reports
}

// duplicateThreshold is the similarity ratio at or above which two records
// are considered likely duplicates.
const duplicateThreshold = 0.8

// Duplicates returns the dataset entries whose similarity to r is at or above
// the duplicate threshold.
func Duplicates(r Record, dataset []Record) []Record {
	var dups []Record
	for _, other := range dataset {
		if Similarity(r, other) >= duplicateThreshold {
			dups = append(dups, other)
		}
	}
	return dups
}

// Similarity returns the fraction of matching fields between two records.
// A matching part number and station is always a full match, since that pair
// is the portal's effective key.
func Similarity(a, b Record) float64 {
	if a.PartNumber == b.PartNumber && a.Station == b.Station {
		return 1.0
	}

	matches := 0
	if a.PartNumber == b.PartNumber {
		matches++
	}
	if a.Station == b.Station {
		matches++
	}
	if a.Version == b.Version {
		matches++
	}
	if a.Description == b.Description {
		matches++
	}
	if a.ManufacturingGroup == b.ManufacturingGroup {
		matches++
	}
	return float64(matches) / float64(len(FieldOrder))
}
