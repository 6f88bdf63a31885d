package models

// CohortStatus is the lifecycle state of a cohort.
type CohortStatus string

const (
	CohortActive    CohortStatus = "Active"
	CohortCompleted CohortStatus = "Completed"
	CohortUpcoming  CohortStatus = "Upcoming"
)

// Cohort is a group of participants going through the program together.
type Cohort struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	StartDate string       `json:"startDate"`
	Status    CohortStatus `json:"status"`
}

// DefaultCohorts returns the cohorts available at startup, newest first.
func DefaultCohorts() []Cohort {
	return []Cohort{
		{ID: "c-101", Name: "Cohort Alpha (Fall 2023)", StartDate: "2023-09-01", Status: CohortActive},
		{ID: "c-100", Name: "Cohort Beta (Spring 2023)", StartDate: "2023-03-01", Status: CohortCompleted},
	}
}

// FindCohort returns the cohort with id from cohorts.
func FindCohort(cohorts []Cohort, id string) (Cohort, bool) {
	for _, c := range cohorts {
		if c.ID == id {
			return c, true
		}
	}
	return Cohort{}, false
}
