// Package geo resolves a fixed set of city names to coordinates. It is a
// static table, not a geocoder: exact case-sensitive match on the city
// string only, and the country is accepted but unused.
package geo

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type entry struct {
	city string
	at   Coordinates
}

// The source data carries duplicate listings for Portland and Glendale
// with conflicting coordinates. Insertion order is preserved here so the
// last listing wins, which is a known data quality issue rather than a
// deliberate choice.
var cityEntries = []entry{
	{"Birmingham", Coordinates{33.5207, -86.8025}},
	{"Portland", Coordinates{45.5152, -122.6784}},
	{"Hangzhou", Coordinates{30.2741, 120.1551}},
	{"Balkbrug", Coordinates{52.6000, 6.3833}},
	{"New York", Coordinates{40.7128, -74.0060}},
	{"Los Angeles", Coordinates{34.0522, -118.2437}},
	{"Chicago", Coordinates{41.8781, -87.6298}},
	{"Houston", Coordinates{29.7604, -95.3698}},
	{"Phoenix", Coordinates{33.4484, -112.0740}},
	{"Philadelphia", Coordinates{39.9526, -75.1652}},
	{"San Antonio", Coordinates{29.4241, -98.4936}},
	{"San Diego", Coordinates{32.7157, -117.1611}},
	{"Dallas", Coordinates{32.7767, -96.7970}},
	{"San Jose", Coordinates{37.3382, -121.8863}},
	{"Austin", Coordinates{30.2672, -97.7431}},
	{"Jacksonville", Coordinates{30.3322, -81.6557}},
	{"Fort Worth", Coordinates{32.7555, -97.3308}},
	{"Columbus", Coordinates{39.9612, -82.9988}},
	{"Charlotte", Coordinates{35.2271, -80.8431}},
	{"San Francisco", Coordinates{37.7749, -122.4194}},
	{"Indianapolis", Coordinates{39.7684, -86.1581}},
	{"Seattle", Coordinates{47.6062, -122.3321}},
	{"Denver", Coordinates{39.7392, -104.9903}},
	{"Washington", Coordinates{38.9072, -77.0369}},
	{"Boston", Coordinates{42.3601, -71.0589}},
	{"El Paso", Coordinates{31.7619, -106.4850}},
	{"Nashville", Coordinates{36.1627, -86.7816}},
	{"Detroit", Coordinates{42.3314, -83.0458}},
	{"Oklahoma City", Coordinates{35.4676, -97.5164}},
	{"Portland", Coordinates{45.5152, -122.6784}},
	{"Las Vegas", Coordinates{36.1699, -115.1398}},
	{"Memphis", Coordinates{35.1495, -90.0490}},
	{"Louisville", Coordinates{38.2527, -85.7585}},
	{"Baltimore", Coordinates{39.2904, -76.6122}},
	{"Milwaukee", Coordinates{43.0389, -87.9065}},
	{"Albuquerque", Coordinates{35.0844, -106.6504}},
	{"Tucson", Coordinates{32.2226, -110.9747}},
	{"Fresno", Coordinates{36.7378, -119.7871}},
	{"Sacramento", Coordinates{38.5816, -121.4944}},
	{"Mesa", Coordinates{33.4152, -111.8315}},
	{"Kansas City", Coordinates{39.0997, -94.5786}},
	{"Atlanta", Coordinates{33.7490, -84.3880}},
	{"Long Beach", Coordinates{33.7701, -118.1937}},
	{"Colorado Springs", Coordinates{38.8339, -104.8214}},
	{"Raleigh", Coordinates{35.7796, -78.6382}},
	{"Miami", Coordinates{25.7617, -80.1918}},
	{"Virginia Beach", Coordinates{36.8529, -75.9780}},
	{"Omaha", Coordinates{41.2565, -95.9345}},
	{"Oakland", Coordinates{37.8044, -122.2711}},
	{"Minneapolis", Coordinates{44.9778, -93.2650}},
	{"Tulsa", Coordinates{36.1540, -95.9928}},
	{"Arlington", Coordinates{32.7357, -97.1081}},
	{"Tampa", Coordinates{27.9506, -82.4572}},
	{"New Orleans", Coordinates{29.9511, -90.0715}},
	{"Wichita", Coordinates{37.6872, -97.3301}},
	{"Cleveland", Coordinates{41.4993, -81.6944}},
	{"Bakersfield", Coordinates{35.3733, -119.0187}},
	{"Aurora", Coordinates{39.7294, -104.8319}},
	{"Anaheim", Coordinates{33.8366, -117.9143}},
	{"Honolulu", Coordinates{21.3099, -157.8581}},
	{"Santa Ana", Coordinates{33.7455, -117.8677}},
	{"Corpus Christi", Coordinates{27.8006, -97.3964}},
	{"Riverside", Coordinates{33.9533, -117.3962}},
	{"Lexington", Coordinates{38.0406, -84.5037}},
	{"Stockton", Coordinates{37.9577, -121.2908}},
	{"Henderson", Coordinates{36.0395, -114.9817}},
	{"Saint Paul", Coordinates{44.9537, -93.0900}},
	{"St. Louis", Coordinates{38.6270, -90.1994}},
	{"Cincinnati", Coordinates{39.1031, -84.5120}},
	{"Pittsburgh", Coordinates{40.4406, -79.9959}},
	{"Anchorage", Coordinates{61.2181, -149.9003}},
	{"Greensboro", Coordinates{36.0726, -79.7920}},
	{"Plano", Coordinates{33.0198, -96.6989}},
	{"Newark", Coordinates{40.7357, -74.1724}},
	{"Durham", Coordinates{35.9940, -78.8986}},
	{"Chula Vista", Coordinates{32.6401, -117.0842}},
	{"Toledo", Coordinates{41.6528, -83.5379}},
	{"Fort Wayne", Coordinates{41.0793, -85.1394}},
	{"St. Petersburg", Coordinates{27.7731, -82.6400}},
	{"Laredo", Coordinates{27.5064, -99.5075}},
	{"Jersey City", Coordinates{40.7178, -74.0431}},
	{"Chandler", Coordinates{33.3062, -111.8413}},
	{"Madison", Coordinates{43.0731, -89.4012}},
	{"Lubbock", Coordinates{33.5779, -101.8552}},
	{"Scottsdale", Coordinates{33.4942, -111.9261}},
	{"Reno", Coordinates{39.5296, -119.8138}},
	{"Buffalo", Coordinates{42.8864, -78.8784}},
	{"Gilbert", Coordinates{33.3528, -111.7890}},
	{"Glendale", Coordinates{33.5387, -112.1860}},
	{"North Las Vegas", Coordinates{36.1989, -115.1175}},
	{"Winston-Salem", Coordinates{36.0999, -80.2442}},
	{"Chesapeake", Coordinates{36.7682, -76.2875}},
	{"Norfolk", Coordinates{36.8508, -76.2859}},
	{"Fremont", Coordinates{37.5485, -121.9886}},
	{"Garland", Coordinates{32.9126, -96.6389}},
	{"Irving", Coordinates{32.8140, -96.9489}},
	{"Hialeah", Coordinates{25.8576, -80.2781}},
	{"Richmond", Coordinates{37.5407, -77.4360}},
	{"Boise", Coordinates{43.6150, -116.2023}},
	{"Spokane", Coordinates{47.6588, -117.4260}},
	{"Baton Rouge", Coordinates{30.4515, -91.1871}},
	{"Tacoma", Coordinates{47.2529, -122.4443}},
	{"San Bernardino", Coordinates{34.1083, -117.2898}},
	{"Grand Rapids", Coordinates{42.9634, -85.6681}},
	{"Huntsville", Coordinates{34.7304, -86.5861}},
	{"Salt Lake City", Coordinates{40.7608, -111.8910}},
	{"Fayetteville", Coordinates{35.0527, -78.8784}},
	{"Yonkers", Coordinates{40.9312, -73.8987}},
	{"Amarillo", Coordinates{35.2220, -101.8313}},
	{"Glendale", Coordinates{34.1425, -118.2551}},
	{"McKinney", Coordinates{33.1972, -96.6397}},
	{"Rochester", Coordinates{43.1566, -77.6088}},
}

var cityCoords = buildTable()

func buildTable() map[string]Coordinates {
	m := make(map[string]Coordinates, len(cityEntries))
	for _, e := range cityEntries {
		m[e.city] = e.at
	}
	return m
}

// Lookup returns coordinates for a known city. The match is exact and
// case-sensitive; the country argument is reserved for disambiguation but
// not consulted yet.
func Lookup(city, country string) (Coordinates, bool) {
	c, ok := cityCoords[city]
	return c, ok
}
