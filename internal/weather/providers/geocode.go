package providers

import (
	"errors"
	"sync"

	"github.com/kelvins/geocoder"
)

// GeocodeFunc resolves a city/country pair to latitude and longitude.
type GeocodeFunc func(city, country string) (float64, float64, error)

var geocoderMu sync.Mutex

// NewGoogleGeocoder returns a GeocodeFunc backed by the Google Geocoding API.
// It returns nil when apiKey is empty so callers can pass it through unchanged.
func NewGoogleGeocoder(apiKey string) GeocodeFunc {
	if apiKey == "" {
		return nil
	}

	return func(city, country string) (float64, float64, error) {
		// The geocoder package keeps its key in a package variable.
		geocoderMu.Lock()
		defer geocoderMu.Unlock()
		geocoder.ApiKey = apiKey

		loc, err := geocoder.Geocoding(geocoder.Address{
			City:    city,
			Country: country,
		})
		if err != nil {
			return 0, 0, err
		}
		if loc.Latitude == 0 && loc.Longitude == 0 {
			return 0, 0, errors.New("geocoder returned no coordinates")
		}
		return loc.Latitude, loc.Longitude, nil
	}
}
