package transit

import "math"

const earthRadiusMeters = 6371000

type Location struct {
	Type        string    `json:"type" bson:"type" groups:"basic"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" groups:"basic"`
}

func NewLocation(longitude float64, latitude float64) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l *Location) Longitude() float64 {
	return l.Coordinates[0]
}

func (l *Location) Latitude() float64 {
	return l.Coordinates[1]
}

// Distance returns the great-circle distance in meters between the two locations
func (l *Location) Distance(other *Location) float64 {
	lat1 := l.Latitude() * math.Pi / 180
	lat2 := other.Latitude() * math.Pi / 180
	deltaLat := (other.Latitude() - l.Latitude()) * math.Pi / 180
	deltaLon := (other.Longitude() - l.Longitude()) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Bearing returns the initial bearing in degrees (0-360) from this location to the other
func (l *Location) Bearing(other *Location) float64 {
	lat1 := l.Latitude() * math.Pi / 180
	lat2 := other.Latitude() * math.Pi / 180
	deltaLon := (other.Longitude() - l.Longitude()) * math.Pi / 180

	y := math.Sin(deltaLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}
