package capture

import "fmt"

// VehicleInfo is what a VIN decodes to.
type VehicleInfo struct {
	Year  string `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

// decoded VINs; there is no real decoder behind this.
var knownVINs = map[string]VehicleInfo{
	"1HGCM82633A123456": {Year: "2023", Make: "Honda", Model: "Accord"},
	"1FTFW1ET5DFC12345": {Year: "2022", Make: "Ford", Model: "F-150"},
	"1G1YY22G965123456": {Year: "2021", Make: "Chevrolet", Model: "Camaro"},
}

// DecodeVIN looks vin up in the mock table.
func DecodeVIN(vin string) (VehicleInfo, error) {
	info, ok := knownVINs[vin]
	if !ok {
		return VehicleInfo{}, fmt.Errorf("decode %q: %w", vin, ErrUnknownVIN)
	}
	return info, nil
}
