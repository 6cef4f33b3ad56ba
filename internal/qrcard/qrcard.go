// Package qrcard renders the scannable credential card issued to a driver.
package qrcard

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/anhhuy/fueltrack/internal/model"
)

// Write renders a 400px PNG QR code of the driver's credential id into dir
// and returns the file path. A rendering failure never rolls back the
// registration; callers report it and keep the driver.
func Write(dir string, d model.Driver) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("qr dir: %w", err)
	}
	path := filepath.Join(dir, d.ID+".png")
	if err := qrcode.WriteFile(d.ID, qrcode.Medium, 400, path); err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	return path, nil
}
