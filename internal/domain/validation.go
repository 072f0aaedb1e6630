package domain

const (
	WarningDOBBefore1900 = "date of birth is from before year 1900"
	WarningNoDocuments   = "there are no scanned documents"
)

var earliestPlausibleDOB = NewDate(1900, 1, 1)

// CaseWarnings runs the advisory checks against an assembled case. Each check
// is independent; none of them blocks case creation.
func CaseWarnings(c Case) []string {
	warnings := make([]string, 0)

	if c.DateOfBirth.Before(earliestPlausibleDOB.Time) {
		warnings = append(warnings, WarningDOBBefore1900)
	}
	if len(c.ScannedDocuments) == 0 {
		warnings = append(warnings, WarningNoDocuments)
	}

	return warnings
}
