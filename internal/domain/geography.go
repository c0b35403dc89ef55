package domain

// RatingArea is the geographic pricing unit for ACA marketplace plans:
// a state plus a sub-state area number.
type RatingArea struct {
	StateCode string `json:"state_code"`
	Number    int    `json:"number"`
}

// RatingAreaAssignment is one row of the ZIP -> county -> rating area
// reference table. A ZIP may map to multiple counties; PopulationShare
// is the precomputed share of the ZIP's population living in that
// county, used as the disambiguation default when no county hint is
// supplied.
type RatingAreaAssignment struct {
	ZIPCode         string  `json:"zip_code"`
	CountyFIPS      string  `json:"county_fips"`
	CountyName      string  `json:"county_name"`
	StateCode       string  `json:"state_code"`
	RatingArea      int     `json:"rating_area"`
	PopulationShare float64 `json:"population_share"`
}
