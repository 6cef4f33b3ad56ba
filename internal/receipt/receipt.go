// Package receipt renders committed transactions into fixed-layout receipt images.
package receipt

import (
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/anhhuy/fueltrack/internal/model"
)

// Renderer turns a transaction into a receipt artifact and returns its path.
type Renderer interface {
	Render(tx model.Transaction) (string, error)
}

const (
	canvasW    = 1200
	canvasH    = 600
	lineHeight = 35
)

// ImageRenderer draws the receipt as a 1200x600 JPEG:
// station header, two detail columns, bold total, footer with the transaction id.
type ImageRenderer struct {
	Station  string // station name printed in the header
	Dir      string // output directory
	FontPath string // optional TTF; falls back to the built-in face when empty
}

var vnd = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount with Vietnamese thousands separators.
func FormatVND(d decimal.Decimal) string {
	if d.IsInteger() {
		return vnd.Sprint(number.Decimal(d.IntPart()))
	}
	f, _ := d.Float64()
	return vnd.Sprint(number.Decimal(f, number.MaxFractionDigits(3)))
}

// Render writes Receipt_<plate>_<unix-ms>.jpg into Dir.
func (r *ImageRenderer) Render(tx model.Transaction) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("receipt dir: %w", err)
	}

	dc := gg.NewContext(canvasW, canvasH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	r.face(dc, 36)
	dc.DrawStringAnchored(r.Station, canvasW/2, 50, 0.5, 0.5)
	r.face(dc, 18)
	dc.DrawStringAnchored("FUEL RECEIPT", canvasW/2, 80, 0.5, 0.5)

	dc.SetLineWidth(2)
	dc.DrawLine(50, 100, canvasW-50, 100)
	dc.Stroke()

	r.face(dc, 20)
	left := []string{
		"Date: " + tx.Date,
		"Time: " + tx.Timestamp.Format("15:04:05"),
		"Driver: " + tx.DriverName,
		"Company: " + tx.DriverCompany,
		"Vehicle: " + tx.VehiclePlate,
	}
	for i, line := range left {
		dc.DrawString(line, 80, float64(140+i*lineHeight))
	}

	right := []string{
		"Fuel Type: " + string(tx.FuelType),
		"Quantity: " + tx.Quantity.String() + " L",
		"Unit Price: " + FormatVND(tx.UnitPrice) + " VND/L",
	}
	for i, line := range right {
		dc.DrawString(line, 650, float64(140+i*lineHeight))
	}
	r.face(dc, 28)
	dc.DrawString("TOTAL: "+FormatVND(tx.Total)+" VND", 650, float64(140+4*lineHeight))

	r.face(dc, 16)
	dc.DrawStringAnchored("Thank you for your business!", canvasW/2, 500, 0.5, 0.5)
	r.face(dc, 14)
	dc.DrawStringAnchored("Transaction ID: "+tx.ID, canvasW/2, 530, 0.5, 0.5)

	name := fmt.Sprintf("Receipt_%s_%d.jpg", tx.VehiclePlate, time.Now().UnixMilli())
	path := filepath.Join(r.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := jpeg.Encode(f, dc.Image(), &jpeg.Options{Quality: 95}); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// face switches the drawing face; without a configured font the built-in
// bitmap face is used at its native size.
func (r *ImageRenderer) face(dc *gg.Context, points float64) {
	if r.FontPath == "" {
		return
	}
	_ = dc.LoadFontFace(r.FontPath, points)
}
