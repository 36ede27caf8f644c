// sawfit-desktop is the desktop viewer for sawfit problems.
//
// Build:
//   go build -o sawfit-desktop ./cmd/sawfit-desktop
//
// Using fyne-cross for packaged builds:
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64
package main

import (
	"flag"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	"k8s.io/klog/v2"

	"github.com/piwi3910/sawfit/internal/ui"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	application := app.NewWithID("com.piwi3910.sawfit")
	window := application.NewWindow("sawfit")

	appUI := ui.NewApp(application, window)
	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()
	window.ShowAndRun()
}
