// Package bridges reads the National Bridge Inventory export that backs the
// public bridge map.
package bridges

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NBI item column names.
const (
	colStructureNumber = "STRUCTURE_NUMBER_008"
	colLatitude        = "LAT_016"
	colLongitude       = "LONG_017"
	colFeaturesDesc    = "FEATURES_DESC_006A"
	colFacilityCarried = "FACILITY_CARRIED_007"
	colLocation        = "LOCATION_009"
	colYearBuilt       = "YEAR_BUILT_027"
	colADT             = "ADT_029"
	colStructureLength = "STRUCTURE_LEN_MT_049"
	colDeckWidth       = "DECK_WIDTH_MT_052"
	colInspectionDate  = "DATE_OF_INSPECT_090"
	colOwner           = "OWNER_022"
	colDeckCond        = "DECK_COND_058"
	colSuperCond       = "SUPERSTRUCTURE_COND_059"
	colSubCond         = "SUBSTRUCTURE_COND_060"
	colCulvertCond     = "CULVERT_COND_062"
)

const (
	ConditionGood    = "Good"
	ConditionFair    = "Fair"
	ConditionPoor    = "Poor"
	ConditionUnknown = "Unknown"
)

// Bridge is one located structure from the inventory.
type Bridge struct {
	ID                  string  `json:"id"`
	Lat                 float64 `json:"lat"`
	Long                float64 `json:"long"`
	Name                string  `json:"name"`
	Condition           string  `json:"condition"`
	YearBuilt           string  `json:"yearBuilt,omitempty"`
	FacilityCarried     string  `json:"facilityCarried,omitempty"`
	FeaturesDesc        string  `json:"featuresDesc,omitempty"`
	Location            string  `json:"location,omitempty"`
	AverageDailyTraffic string  `json:"averageDailyTraffic,omitempty"`
	StructureLength     string  `json:"structureLength,omitempty"`
	DeckWidth           string  `json:"deckWidth,omitempty"`
	LastInspectionDate  string  `json:"lastInspectionDate,omitempty"`
	Owner               string  `json:"owner,omitempty"`
}

// ParseCoordinate converts an NBI DDMMSSXX latitude or DDDMMSSXX longitude to
// decimal degrees. Longitudes are west and come back negative. Malformed
// input yields 0.
func ParseCoordinate(coord string, isLong bool) float64 {
	c := strings.TrimSpace(coord)
	n := len(c)
	if n < 8 {
		return 0
	}

	dd, err1 := strconv.Atoi(c[:n-6])
	mm, err2 := strconv.Atoi(c[n-6 : n-4])
	ss, err3 := strconv.Atoi(c[n-4 : n-2])
	xx, err4 := strconv.Atoi(c[n-2:])
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return 0
	}

	seconds := float64(ss) + float64(xx)/100
	deg := float64(dd) + float64(mm)/60 + seconds/3600
	if isLong {
		deg = -deg
	}
	return deg
}

// Condition rates a structure by its worst component rating. "N" and blanks
// are not applicable.
func Condition(ratings ...string) string {
	lowest := -1
	for _, r := range ratings {
		r = strings.TrimSpace(r)
		if r == "" || r == "N" {
			continue
		}
		v, err := strconv.Atoi(r)
		if err != nil {
			continue
		}
		if lowest < 0 || v < lowest {
			lowest = v
		}
	}

	switch {
	case lowest < 0:
		return ConditionUnknown
	case lowest >= 7:
		return ConditionGood
	case lowest >= 5:
		return ConditionFair
	default:
		return ConditionPoor
	}
}

// Parse reads a comma-delimited NBI export with a header row. Rows without a
// usable location are skipped.
func Parse(r io.Reader) ([]Bridge, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read NBI header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.Trim(strings.TrimSpace(name), "'\"")] = i
	}
	if _, ok := index[colStructureNumber]; !ok {
		return nil, fmt.Errorf("NBI header lacks %s", colStructureNumber)
	}

	var out []Bridge
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read NBI line %d: %w", line, err)
		}
		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.Trim(strings.TrimSpace(rec[i]), "'")
		}

		lat := ParseCoordinate(field(colLatitude), false)
		long := ParseCoordinate(field(colLongitude), true)
		if lat == 0 && long == 0 {
			continue
		}

		name := field(colFeaturesDesc)
		if name == "" {
			name = field(colFacilityCarried)
		}
		out = append(out, Bridge{
			ID:                  field(colStructureNumber),
			Lat:                 lat,
			Long:                long,
			Name:                name,
			Condition:           Condition(field(colDeckCond), field(colSuperCond), field(colSubCond), field(colCulvertCond)),
			YearBuilt:           field(colYearBuilt),
			FacilityCarried:     field(colFacilityCarried),
			FeaturesDesc:        field(colFeaturesDesc),
			Location:            field(colLocation),
			AverageDailyTraffic: field(colADT),
			StructureLength:     field(colStructureLength),
			DeckWidth:           field(colDeckWidth),
			LastInspectionDate:  field(colInspectionDate),
			Owner:               field(colOwner),
		})
	}
	return out, nil
}
