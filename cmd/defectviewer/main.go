package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"defectplot/src/defectdata"
	"defectplot/src/plotting"
)

type uiState struct {
	app    fyne.App
	window fyne.Window

	diagramPath  string
	chempotsPath string
	diagram      *defectdata.Diagram
	chempots     *defectdata.ChempotSpec

	facet      string
	entries    string // "stable", "all" or "faded"
	colormap   string
	autoLabels bool
	showTable  bool
	showHints  bool

	lastFig *plotting.Figure

	figCanvas   *canvas.Image
	facetSelect *widget.Select
	statusLabel *widget.Label
}

func main() {
	var diagramFlag, chempotsFlag string
	flag.StringVar(&diagramFlag, "diagram", "", "Path to a defect phase diagram JSON")
	flag.StringVar(&chempotsFlag, "chempots", "", "Path to a chemical potentials JSON")
	flag.Parse()

	a := app.NewWithID("com.defectplot.viewer")
	w := a.NewWindow("Defect Diagram Viewer")
	w.Resize(fyne.NewSize(1050, 760))

	state := &uiState{
		app:          a,
		window:       w,
		diagramPath:  diagramFlag,
		chempotsPath: chempotsFlag,
		entries:      a.Preferences().StringWithFallback("entries", "stable"),
		colormap:     a.Preferences().StringWithFallback("colormap", "Dark2"),
		autoLabels:   a.Preferences().BoolWithFallback("autoLabels", false),
		showTable:    a.Preferences().BoolWithFallback("chempotTable", true),
		showHints:    a.Preferences().BoolWithFallback("showHints", false),
	}

	state.statusLabel = widget.NewLabel("")
	state.figCanvas = canvas.NewImageFromImage(blank(900, 600))
	state.figCanvas.FillMode = canvas.ImageFillContain

	entriesSelect := widget.NewSelect([]string{"stable", "all", "faded"}, func(v string) {
		state.entries = v
		savePrefs(state)
		redraw(state)
	})
	entriesSelect.Selected = state.entries

	colormapSelect := widget.NewSelect([]string{"Dark2", "tab10", "tab20"}, func(v string) {
		state.colormap = v
		savePrefs(state)
		redraw(state)
	})
	colormapSelect.Selected = state.colormap

	state.facetSelect = widget.NewSelect([]string{}, func(v string) {
		state.facet = v
		redraw(state)
	})
	state.facetSelect.PlaceHolder = "(no facets)"

	labelsChk := widget.NewCheck("Transition labels", func(v bool) {
		state.autoLabels = v
		savePrefs(state)
		redraw(state)
	})
	labelsChk.SetChecked(state.autoLabels)

	tableChk := widget.NewCheck("Chempot table", func(v bool) {
		state.showTable = v
		savePrefs(state)
		redraw(state)
	})
	tableChk.SetChecked(state.showTable)

	hintsChk := widget.NewCheck("Hints", func(v bool) {
		state.showHints = v
		savePrefs(state)
		redraw(state)
	})
	hintsChk.SetChecked(state.showHints)

	openBtn := widget.NewButton("Open Diagram...", func() {
		dialog.ShowFileOpen(func(rd fyne.URIReadCloser, err error) {
			if err != nil || rd == nil {
				return
			}
			rd.Close()
			state.diagramPath = rd.URI().Path()
			loadAll(state)
		}, state.window)
	})
	exportBtn := widget.NewButton("Export PNG...", func() { exportFigure(state) })

	top := container.NewHBox(
		openBtn,
		widget.NewLabel("Facet:"), state.facetSelect,
		widget.NewLabel("Lines:"), entriesSelect,
		widget.NewLabel("Colors:"), colormapSelect,
		labelsChk, tableChk, hintsChk,
		exportBtn,
	)
	w.SetContent(container.NewBorder(top, state.statusLabel, nil, nil, container.NewScroll(state.figCanvas)))

	if state.diagramPath != "" {
		loadAll(state)
	}
	w.ShowAndRun()
}

func savePrefs(state *uiState) {
	p := state.app.Preferences()
	p.SetString("entries", state.entries)
	p.SetString("colormap", state.colormap)
	p.SetBool("autoLabels", state.autoLabels)
	p.SetBool("chempotTable", state.showTable)
	p.SetBool("showHints", state.showHints)
}

// loadAll reloads the diagram and chempot files and refreshes the facet
// selector before redrawing.
func loadAll(state *uiState) {
	d, err := defectdata.LoadDiagram(state.diagramPath)
	if err != nil {
		state.statusLabel.SetText(fmt.Sprintf("load failed: %v", err))
		return
	}
	state.diagram = d
	state.chempots = nil
	if state.chempotsPath != "" {
		spec, err := defectdata.LoadChempots(state.chempotsPath)
		if err != nil {
			state.statusLabel.SetText(fmt.Sprintf("chempots load failed: %v", err))
		} else {
			state.chempots = spec
		}
	}

	var facets []string
	if state.chempots.HasFacets() {
		facets = state.chempots.FacetNames()
	}
	state.facetSelect.Options = facets
	if len(facets) > 0 {
		state.facet = facets[0]
		state.facetSelect.Selected = state.facet
	} else {
		state.facet = ""
	}
	state.facetSelect.Refresh()
	redraw(state)
}

// redraw re-renders the figure for the current selections.
func redraw(state *uiState) {
	if state.diagram == nil {
		return
	}
	mode, err := plotting.ParseEntriesMode(state.entries)
	if err != nil {
		state.statusLabel.SetText(err.Error())
		return
	}
	opts := plotting.Options{
		Chempots:     state.chempots,
		ChempotTable: state.showTable,
		Entries:      mode,
		Colormap:     state.colormap,
		AutoLabels:   state.autoLabels,
	}
	if state.facet != "" {
		opts.Facets = []string{state.facet}
	}
	fig, err := plotting.FormationEnergyPlot(state.diagram, opts)
	if err != nil {
		state.statusLabel.SetText(fmt.Sprintf("render failed: %v", err))
		cw, ch := chartSize(state)
		state.figCanvas.Image = blank(cw, ch)
		state.figCanvas.Refresh()
		return
	}
	state.lastFig = fig

	img := fig.Image
	if state.showHints {
		img = drawHint(img, "Hint: dots mark transition levels; shaded regions are the band edges.")
	}
	state.figCanvas.Image = img
	cw, ch := chartSize(state)
	state.figCanvas.SetMinSize(fyne.NewSize(float32(cw), float32(ch)))
	state.figCanvas.Refresh()

	if len(fig.Warnings) > 0 {
		state.statusLabel.SetText("warning: " + strings.Join(fig.Warnings, " | "))
	} else {
		state.statusLabel.SetText(fmt.Sprintf("%s — %d species", state.diagramPath, len(state.diagram.StableEntries())))
	}
}

func exportFigure(state *uiState) {
	if state.lastFig == nil {
		dialog.ShowInformation("Export", "No figure to export.", state.window)
		return
	}
	dialog.ShowFileSave(func(wr fyne.URIWriteCloser, err error) {
		if err != nil || wr == nil {
			return
		}
		defer wr.Close()
		if _, err := wr.Write(state.lastFig.PNG); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
}

// chartSize computes a figure size from the current window width so the
// diagram uses the available space.
func chartSize(state *uiState) (int, int) {
	if state == nil || state.window == nil || state.window.Canvas() == nil {
		return 900, 600
	}
	sz := state.window.Canvas().Size()
	w := int(sz.Width*0.95) - 12
	if w < 700 {
		w = 700
	}
	h := int(float32(w) * 0.66)
	if h < 420 {
		h = 420
	}
	if h > 820 {
		h = 820
	}
	return w, h
}

// blank returns a plain background image used before any diagram loads.
func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 245, G: 245, B: 245, A: 255}), image.Point{}, draw.Src)
	return img
}

// drawHint draws a small hint string onto the provided image near the
// bottom-left.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
