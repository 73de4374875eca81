package amap

// statusOK is the provider's success status code.
const statusOK = "1"

// geocodeResponse is the forward-lookup payload.
type geocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Geocodes []struct {
		// Location is a "lon,lat" pair.
		Location         string `json:"location"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"geocodes"`
}

// regeoResponse is the reverse-lookup payload.
type regeoResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"regeocode"`
}
