package exports

import (
	"strconv"
	"strings"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

var tuttiFuel = map[enums.FuelType]string{
	enums.FuelTypePetrol:       "Benzin",
	enums.FuelTypeDiesel:       "Diesel",
	enums.FuelTypeElectric:     "Elektro",
	enums.FuelTypeHybrid:       "Hybrid",
	enums.FuelTypePluginHybrid: "Plug-in-Hybrid",
	enums.FuelTypeGas:          "Gas",
}

var tuttiTransmission = map[enums.Transmission]string{
	enums.TransmissionManual:    "Manuell",
	enums.TransmissionAutomatic: "Automatik",
}

// Tutti is the tutti.ch classifieds layout: a generated title and description plus one image.
type Tutti struct{}

func (Tutti) Format() Format { return FormatTutti }

func (Tutti) Statuses() []enums.VehicleStatus { return marketplaceStatuses }

func (Tutti) Header() []string {
	return []string{
		"Titel", "Beschreibung", "Preis", "Marke", "Modell", "Jahrgang", "Kilometer",
		"Treibstoff", "Getriebe", "Farbe", "Leistung_PS", "Bild_URL",
	}
}

func (t Tutti) Row(v models.Vehicle) []string {
	return []string{
		tuttiTitle(v),
		tuttiDescription(v),
		price(v.AskingPrice),
		v.Make,
		v.Model,
		registrationYear(v.FirstRegistration),
		optionalInt(v.Mileage),
		translate(tuttiFuel, v.FuelType),
		translate(tuttiTransmission, v.Transmission),
		optionalString(v.Color),
		horsepower(v.PowerKW),
		mainImage(v.Images),
	}
}

func tuttiTitle(v models.Vehicle) string {
	parts := []string{v.Make, v.Model}
	if variant := optionalString(v.Variant); variant != "" {
		parts = append(parts, variant)
	}
	if year := registrationYear(v.FirstRegistration); year != "" {
		parts = append(parts, year)
	}
	return strings.Join(parts, " ")
}

func tuttiDescription(v models.Vehicle) string {
	var lines []string
	if v.Mileage != nil && *v.Mileage > 0 {
		lines = append(lines, "Kilometerstand: "+groupThousands(*v.Mileage)+" km")
	}
	if year := registrationYear(v.FirstRegistration); year != "" {
		lines = append(lines, "Erstzulassung: "+year)
	}
	if v.FuelType != nil {
		lines = append(lines, "Treibstoff: "+translate(tuttiFuel, v.FuelType))
	}
	if v.Transmission != nil {
		lines = append(lines, "Getriebe: "+translate(tuttiTransmission, v.Transmission))
	}
	if v.PowerKW != nil && *v.PowerKW > 0 {
		lines = append(lines, "Leistung: "+strconv.Itoa(*v.PowerKW)+" kW ("+horsepower(v.PowerKW)+" PS)")
	}
	if color := optionalString(v.Color); color != "" {
		lines = append(lines, "Farbe: "+color)
	}
	if desc := optionalString(v.Description); desc != "" {
		lines = append(lines, "", desc)
	}
	return strings.Join(lines, "\n")
}

// mainImage prefers the image flagged as main, then the lowest position.
func mainImage(images []models.VehicleImage) string {
	for _, img := range images {
		if img.IsMain && img.URL != "" {
			return img.URL
		}
	}
	if urls := imageURLs(images); len(urls) > 0 {
		return urls[0]
	}
	return ""
}

// groupThousands formats n the Swiss way, 123’456.
func groupThousands(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString("\u2019")
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}
