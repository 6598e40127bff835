package exports

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

// FullImageColumns is the picture column count of the inventory backup layout.
const FullImageColumns = 10

var fullFuel = map[enums.FuelType]string{
	enums.FuelTypePetrol:       "Benzin",
	enums.FuelTypeDiesel:       "Diesel",
	enums.FuelTypeElectric:     "Elektro",
	enums.FuelTypeHybrid:       "Hybrid",
	enums.FuelTypePluginHybrid: "Plug-in Hybrid",
	enums.FuelTypeGas:          "Gas (CNG/LPG)",
}

var fullStatus = map[enums.VehicleStatus]string{
	enums.VehicleStatusInStock:  "An Lager",
	enums.VehicleStatusReserved: "Reserviert",
	enums.VehicleStatusSold:     "Verkauft",
}

// Full dumps every stored vehicle field, sold vehicles included. Now anchors the
// days-on-lot column and must be the request time.
type Full struct {
	Now time.Time
}

func (Full) Format() Format { return FormatFull }

func (Full) Statuses() []enums.VehicleStatus { return nil }

func (Full) Header() []string {
	header := []string{
		"ID", "Marke", "Modell", "Variante", "Erstzulassung", "Kilometerstand", "Treibstoff",
		"Getriebe", "Leistung_kW", "Leistung_PS", "Farbe", "Fahrgestellnummer", "Einkaufspreis",
		"Verkaufspreis", "KI_Preisvorschlag", "Beschreibung", "Interne_Notizen", "Status",
		"Eingekauft_am", "Verkauft_am", "Erfasst_am", "Aktualisiert_am", "Standzeit_Tage",
	}
	for i := 1; i <= FullImageColumns; i++ {
		header = append(header, "Bild"+strconv.Itoa(i))
	}
	return header
}

func (f Full) Row(v models.Vehicle) []string {
	status := v.Status
	row := []string{
		v.ID.String(),
		v.Make,
		v.Model,
		optionalString(v.Variant),
		swissDate(v.FirstRegistration),
		optionalInt(v.Mileage),
		translate(fullFuel, v.FuelType),
		translate(autoScoutTransmission, v.Transmission),
		optionalInt(v.PowerKW),
		horsepower(v.PowerKW),
		optionalString(v.Color),
		optionalString(v.VIN),
		plainDecimal(v.PurchasePrice),
		plainDecimal(v.AskingPrice),
		plainDecimal(v.AISuggestedPrice),
		optionalString(v.Description),
		optionalString(v.InternalNotes),
		translate(fullStatus, &status),
		swissDate(v.AcquiredAt),
		swissDate(v.SoldAt),
		swissDate(&v.CreatedAt),
		swissDate(&v.UpdatedAt),
		strconv.Itoa(DaysOnLot(v.CreatedAt, f.Now)),
	}

	images := imageURLs(v.Images)
	for i := 0; i < FullImageColumns; i++ {
		if i < len(images) {
			row = append(row, images[i])
			continue
		}
		row = append(row, "")
	}
	return row
}

// DaysOnLot counts started days between created and now, in either direction.
func DaysOnLot(created, now time.Time) int {
	if created.IsZero() {
		return 0
	}
	hours := math.Abs(now.Sub(created).Hours())
	return int(math.Ceil(hours / 24))
}

// swissDate renders d.m.yyyy without zero padding.
func swissDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2.1.2006")
}

// plainDecimal keeps the stored value with a decimal point, for re-import.
func plainDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
