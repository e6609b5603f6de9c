package sunwindow_test

import (
	"fmt"
	"time"

	"github.com/thurmanmarka/sunwindow"
)

// ExampleCalculate demonstrates finding the events around a moment in time.
func ExampleCalculate() {
	// Chicago-ish: 42°N, 90°W.
	t := time.Date(2025, time.November, 30, 18, 0, 0, 0, time.UTC).Unix()
	r := sunwindow.Calculate(42, -90, t)

	for _, e := range r.Preceding() {
		fmt.Printf("preceding %s at %s, azimuth %.2f\n", e.Kind, e.At().Format(time.RFC3339), e.Azimuth)
	}
	for _, e := range r.Succeeding() {
		fmt.Printf("succeeding %s at %s, azimuth %.2f\n", e.Kind, e.At().Format(time.RFC3339), e.Azimuth)
	}
	fmt.Println("visible:", r.IsVisible)
	// Intentionally no // Output: block so this stays a documentation example
	// and is not validated as a test.
}

// ExampleNewFinder demonstrates civil twilight with a narrower window.
func ExampleNewFinder() {
	f, err := sunwindow.NewFinder(
		sunwindow.WithWindow(24),
		sunwindow.WithTwilight(sunwindow.TwilightCivil),
	)
	if err != nil {
		panic(err)
	}

	phoenix := sunwindow.Coordinates{Lat: 33.4484, Lon: -112.0740}
	t := time.Date(2025, time.November, 28, 19, 0, 0, 0, time.UTC).Unix()
	r := f.Calculate(phoenix.Lat, phoenix.Lon, t)

	if dawn, ok := r.Rise(); ok {
		fmt.Println("Civil dawn:", dawn.Format(time.RFC3339))
	}
	if dusk, ok := r.Set(); ok {
		fmt.Println("Civil dusk:", dusk.Format(time.RFC3339))
	}
}
