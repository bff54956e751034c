package googlemaps

// Wire types for the Google Maps Platform JSON web services. Only the fields
// the planner reads are declared.

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type autocompleteResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Predictions  []prediction `json:"predictions"`
}

type prediction struct {
	PlaceID              string               `json:"place_id"`
	Description          string               `json:"description"`
	Types                []string             `json:"types"`
	StructuredFormatting structuredFormatting `json:"structured_formatting"`
}

type structuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

type detailsResponse struct {
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       placeDetails `json:"result"`
}

type placeDetails struct {
	PlaceID          string            `json:"place_id"`
	Name             string            `json:"name"`
	FormattedAddress string            `json:"formatted_address"`
	Geometry         *geometry         `json:"geometry,omitempty"`
	Rating           *float64          `json:"rating,omitempty"`
	UserRatingsTotal int               `json:"user_ratings_total"`
	OpeningHours     *openingHours     `json:"opening_hours,omitempty"`
	Types            []string          `json:"types"`
	EditorialSummary *editorialSummary `json:"editorial_summary,omitempty"`
	Photos           []photo           `json:"photos,omitempty"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type openingHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text"`
}

type editorialSummary struct {
	Overview string `json:"overview"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

type directionsResponse struct {
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Routes       []route     `json:"routes"`
	Waypoints    []geocodeWP `json:"geocoded_waypoints"`
}

type geocodeWP struct {
	GeocoderStatus string `json:"geocoder_status"`
}

type route struct {
	Summary          string   `json:"summary"`
	Legs             []leg    `json:"legs"`
	WaypointOrder    []int    `json:"waypoint_order"`
	OverviewPolyline polyline `json:"overview_polyline"`
	Warnings         []string `json:"warnings"`
}

type leg struct {
	StartAddress  string    `json:"start_address"`
	EndAddress    string    `json:"end_address"`
	StartLocation latLng    `json:"start_location"`
	EndLocation   latLng    `json:"end_location"`
	Distance      textValue `json:"distance"`
	Duration      textValue `json:"duration"`
}

type polyline struct {
	Points string `json:"points"`
}
