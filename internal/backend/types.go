package backend

import "wardrobe/internal/wardrobe"

// Weather is the simplified observation embedded in a recommendation.
type Weather struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	Humidity    float64 `json:"humidity"`
	WindDir     string  `json:"windDir"`
	WindScale   string  `json:"windScale"`
	Location    string  `json:"location,omitempty"`
	ObsTime     string  `json:"obsTime"`
}

// Recommendation is the body of GET /recommendation.
type Recommendation struct {
	Weather         Weather        `json:"weather"`
	Text            string         `json:"recommendation_text"`
	SuggestedTop    *wardrobe.Item `json:"suggested_top,omitempty"`
	SuggestedBottom *wardrobe.Item `json:"suggested_bottom,omitempty"`
}

// City is one GeoAPI match returned by GET /cities.
type City struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Adm1    string `json:"adm1"`
	Adm2    string `json:"adm2"`
	Country string `json:"country"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
}

// Label formats the city the way the selector shows it.
func (c City) Label() string {
	if c.Adm1 == "" {
		return c.Name
	}
	return c.Name + ", " + c.Adm1
}

// MutationAck is the acknowledgement returned by PUT and DELETE.
type MutationAck struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
