package geo

// Locator maps a point to a coarse place name. Implementations are not
// expected to be authoritative; a real geocoder can replace BoxLocator.
type Locator interface {
	Locate(p Point) (string, bool)
}

// Box is a named lat/lng rectangle
type Box struct {
	Name   string
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether p lies inside the box (edges inclusive)
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// BoxLocator resolves a point to the first box that contains it
type BoxLocator struct {
	Boxes []Box
}

// Locate returns the name of the first matching box
func (l BoxLocator) Locate(p Point) (string, bool) {
	for _, b := range l.Boxes {
		if b.Contains(p) {
			return b.Name, true
		}
	}
	return "", false
}

// DefaultMetros is the fixed set of metro rectangles used for coarse
// reverse-geocoding of intake coordinates.
var DefaultMetros = []Box{
	{Name: "New York", MinLat: 40.45, MaxLat: 41.00, MinLng: -74.30, MaxLng: -73.65},
	{Name: "Los Angeles", MinLat: 33.65, MaxLat: 34.35, MinLng: -118.70, MaxLng: -117.90},
	{Name: "Chicago", MinLat: 41.60, MaxLat: 42.10, MinLng: -88.00, MaxLng: -87.50},
	{Name: "Houston", MinLat: 29.50, MaxLat: 30.15, MinLng: -95.80, MaxLng: -95.00},
	{Name: "Miami", MinLat: 25.55, MaxLat: 26.00, MinLng: -80.50, MaxLng: -80.10},
	{Name: "Atlanta", MinLat: 33.60, MaxLat: 34.00, MinLng: -84.60, MaxLng: -84.20},
	{Name: "Seattle", MinLat: 47.45, MaxLat: 47.75, MinLng: -122.45, MaxLng: -122.20},
	{Name: "San Francisco", MinLat: 37.60, MaxLat: 37.85, MinLng: -122.55, MaxLng: -122.30},
	{Name: "Boston", MinLat: 42.25, MaxLat: 42.45, MinLng: -71.20, MaxLng: -70.95},
	{Name: "Washington DC", MinLat: 38.80, MaxLat: 39.00, MinLng: -77.12, MaxLng: -76.90},
}

// DefaultLocator returns a BoxLocator over DefaultMetros
func DefaultLocator() BoxLocator {
	return BoxLocator{Boxes: DefaultMetros}
}
