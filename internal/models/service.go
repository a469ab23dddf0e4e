package models

// ServiceTypes is the catalog offered when logging a record. Free text is
// still accepted when the catalog is bypassed.
var ServiceTypes = []string{
	"Oil Change",
	"Brake Pads (Front)",
	"Brake Pads (Rear)",
	"Brake Rotors (Front)",
	"Brake Rotors (Rear)",
	"Transmission Fluid",
	"Brake Fluid",
	"Tire Rotation",
	"Tire Balance",
	"Air Filter",
	"Coolant Flush",
	"Spark Plugs",
}

// IsCatalogService reports whether name is one of the catalog entries.
func IsCatalogService(name string) bool {
	for _, s := range ServiceTypes {
		if s == name {
			return true
		}
	}
	return false
}
