package quiz

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/gamehub-backend/internal/entity"
)

//go:embed data/countries.json
var sampleCountries []byte

// Continents lists the continent codes a quiz can be filtered by.
var Continents = []string{"AF", "AN", "AS", "EU", "NA", "OC", "SA"}

// Catalog is the read side of the country data the quiz asks about.
type Catalog interface {
	// Pool returns the sorted codes playable for quizType within the given
	// continents. A filter of ["all"] returns the whole pool.
	Pool(quizType string, continents []string) []string
	// Label is the answer text shown for code: the country name or its capital.
	Label(quizType, code string) string
}

type Country struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Capital   string `json:"capital"`
	Continent string `json:"continent"`
}

type StaticCatalog struct {
	countries map[string]Country
	pools     map[string]map[string][]string
}

// NewSampleCatalog - loads the embedded sample data.
func NewSampleCatalog() (*StaticCatalog, error) {
	var countries []Country
	if err := json.Unmarshal(sampleCountries, &countries); err != nil {
		return nil, fmt.Errorf("failed to decode sample catalog: %w", err)
	}

	return NewStaticCatalog(countries), nil
}

func NewStaticCatalog(countries []Country) *StaticCatalog {
	that := &StaticCatalog{
		countries: make(map[string]Country, len(countries)),
		pools: map[string]map[string][]string{
			entity.QuizFlagCountry:    {},
			entity.QuizCountryCapital: {},
		},
	}

	for _, country := range countries {
		that.countries[country.Code] = country

		that.add(entity.QuizFlagCountry, country)
		if country.Capital != "" {
			that.add(entity.QuizCountryCapital, country)
		}
	}

	for _, byContinent := range that.pools {
		for _, codes := range byContinent {
			slices.Sort(codes)
		}
	}

	return that
}

func (that *StaticCatalog) add(quizType string, country Country) {
	pools := that.pools[quizType]
	pools[entity.ContinentAll] = append(pools[entity.ContinentAll], country.Code)

	if slices.Contains(Continents, country.Continent) {
		pools[country.Continent] = append(pools[country.Continent], country.Code)
	}
}

func (that *StaticCatalog) Pool(quizType string, continents []string) []string {
	pools, ok := that.pools[quizType]
	if !ok {
		pools = that.pools[entity.QuizFlagCountry]
	}

	filter := NormalizeContinents(continents)
	if filter[0] == entity.ContinentAll {
		return slices.Clone(pools[entity.ContinentAll])
	}

	var merged []string
	for _, continent := range filter {
		merged = append(merged, pools[continent]...)
	}
	slices.Sort(merged)

	return slices.Compact(merged)
}

func (that *StaticCatalog) Label(quizType, code string) string {
	country, ok := that.countries[code]
	if !ok {
		return code
	}

	if quizType == entity.QuizCountryCapital {
		return country.Capital
	}

	return country.Name
}

// NormalizeContinents drops unknown codes and sorts the rest. An empty result,
// or any filter mentioning "all", becomes ["all"].
func NormalizeContinents(raw []string) []string {
	var values []string
	for _, code := range raw {
		if code == entity.ContinentAll {
			return []string{entity.ContinentAll}
		}

		if slices.Contains(Continents, code) {
			values = append(values, code)
		}
	}

	if len(values) == 0 {
		return []string{entity.ContinentAll}
	}

	slices.Sort(values)

	return slices.Compact(values)
}
