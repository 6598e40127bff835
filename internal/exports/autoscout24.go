package exports

import (
	"strconv"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

var autoScoutFuel = map[enums.FuelType]string{
	enums.FuelTypePetrol:       "Benzin",
	enums.FuelTypeDiesel:       "Diesel",
	enums.FuelTypeElectric:     "Elektro",
	enums.FuelTypeHybrid:       "Hybrid",
	enums.FuelTypePluginHybrid: "Plug-in-Hybrid",
	enums.FuelTypeGas:          "Erdgas (CNG)",
}

var autoScoutTransmission = map[enums.Transmission]string{
	enums.TransmissionManual:    "Schaltgetriebe",
	enums.TransmissionAutomatic: "Automatik",
}

// AutoScout24 is the AutoScout24 CSV import layout.
type AutoScout24 struct {
	// ImageColumns defaults to DefaultImageColumns when not positive.
	ImageColumns int
}

func (AutoScout24) Format() Format { return FormatAutoScout24 }

func (AutoScout24) Statuses() []enums.VehicleStatus { return marketplaceStatuses }

func (a AutoScout24) columns() int {
	if a.ImageColumns <= 0 {
		return DefaultImageColumns
	}
	return a.ImageColumns
}

func (a AutoScout24) Header() []string {
	header := []string{
		"Marke", "Modell", "Variante", "Erstzulassung", "Kilometer", "Treibstoff",
		"Getriebe", "Leistung", "Farbe", "Preis", "Beschreibung",
	}
	for i := 1; i <= a.columns(); i++ {
		header = append(header, "Bild"+strconv.Itoa(i))
	}
	return header
}

func (a AutoScout24) Row(v models.Vehicle) []string {
	row := []string{
		v.Make,
		v.Model,
		optionalString(v.Variant),
		registrationMonth(v.FirstRegistration),
		optionalInt(v.Mileage),
		translate(autoScoutFuel, v.FuelType),
		translate(autoScoutTransmission, v.Transmission),
		optionalInt(v.PowerKW),
		optionalString(v.Color),
		price(v.AskingPrice),
		optionalString(v.Description),
	}

	images := imageURLs(v.Images)
	for i := 0; i < a.columns(); i++ {
		if i < len(images) {
			row = append(row, images[i])
			continue
		}
		row = append(row, "")
	}
	return row
}
