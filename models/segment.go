// Package models contains domain entities and business models for the shorts intel hub
package models

import "fmt"

// Market is a supported short-video market.
type Market string

const (
	MarketJP   Market = "JP"
	MarketKR   Market = "KR"
	MarketIN   Market = "IN"
	MarketID   Market = "ID"
	MarketAUNZ Market = "AUNZ"
)

// Gender is a target demographic gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AgeBand is a target demographic age band.
type AgeBand string

const (
	AgeBand18To24 AgeBand = "18-24"
	AgeBand25To34 AgeBand = "25-34"
	AgeBand35To44 AgeBand = "35-44"
)

// AllMarkets lists every supported market in display order.
func AllMarkets() []Market {
	return []Market{MarketJP, MarketKR, MarketIN, MarketID, MarketAUNZ}
}

// AllGenders lists every target gender.
func AllGenders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

// AllAgeBands lists every target age band.
func AllAgeBands() []AgeBand {
	return []AgeBand{AgeBand18To24, AgeBand25To34, AgeBand35To44}
}

// MarketName returns the human-readable name for a market code.
func MarketName(m Market) string {
	switch m {
	case MarketJP:
		return "Japan"
	case MarketKR:
		return "Korea"
	case MarketIN:
		return "India"
	case MarketID:
		return "Indonesia"
	case MarketAUNZ:
		return "Australia/New Zealand"
	}
	return string(m)
}

// MarketTimezone returns the IANA timezone used for a market's refresh schedule.
func MarketTimezone(m Market) string {
	switch m {
	case MarketJP:
		return "Asia/Tokyo"
	case MarketKR:
		return "Asia/Seoul"
	case MarketIN:
		return "Asia/Kolkata"
	case MarketID:
		return "Asia/Jakarta"
	case MarketAUNZ:
		return "Australia/Sydney"
	}
	return "UTC"
}

// Segment identifies a (market, gender, age band) ranking partition.
// Rank scores and positions are only comparable within one segment.
type Segment struct {
	Market  Market  `json:"market"`
	Gender  Gender  `json:"gender"`
	AgeBand AgeBand `json:"age_band"`
}

// Validate checks that every component of the segment key is a known value.
func (s Segment) Validate() error {
	switch s.Market {
	case MarketJP, MarketKR, MarketIN, MarketID, MarketAUNZ:
	default:
		return fmt.Errorf("unknown market %q", s.Market)
	}
	switch s.Gender {
	case GenderMale, GenderFemale:
	default:
		return fmt.Errorf("unknown gender %q", s.Gender)
	}
	switch s.AgeBand {
	case AgeBand18To24, AgeBand25To34, AgeBand35To44:
	default:
		return fmt.Errorf("unknown age band %q", s.AgeBand)
	}
	return nil
}

// DemoLabel returns the "<gender> <age-band>" label used by the downstream payload.
func (s Segment) DemoLabel() string {
	return fmt.Sprintf("%s %s", s.Gender, s.AgeBand)
}

// String renders the full segment key, e.g. "JP male 18-24".
func (s Segment) String() string {
	return fmt.Sprintf("%s %s %s", s.Market, s.Gender, s.AgeBand)
}

// AllSegments enumerates every (market, gender, age band) combination.
func AllSegments() []Segment {
	segments := make([]Segment, 0, len(AllMarkets())*len(AllGenders())*len(AllAgeBands()))
	for _, m := range AllMarkets() {
		for _, g := range AllGenders() {
			for _, a := range AllAgeBands() {
				segments = append(segments, Segment{Market: m, Gender: g, AgeBand: a})
			}
		}
	}
	return segments
}

// MarketSegments enumerates the six segments of one market.
func MarketSegments(m Market) []Segment {
	segments := make([]Segment, 0, len(AllGenders())*len(AllAgeBands()))
	for _, g := range AllGenders() {
		for _, a := range AllAgeBands() {
			segments = append(segments, Segment{Market: m, Gender: g, AgeBand: a})
		}
	}
	return segments
}
