// Package diagram draws a model's layer graph as a column of labelled boxes
// joined by arrows, one PNG per model.
package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"ForecastBench/pkg/nn"
)

// Model is what the renderer needs to know about a network.
type Model interface {
	Name() string
	InputShape() nn.Shape
	Summary() []nn.LayerSummary
	CountParams() int
}

type Renderer struct {
	width vg.Length
}

// NewRenderer returns a renderer producing images widthInches wide.
func NewRenderer(widthInches float64) *Renderer {
	if widthInches <= 0 {
		widthInches = 5
	}
	return &Renderer{width: vg.Length(widthInches) * vg.Inch}
}

const (
	boxWidth  = 10.0
	boxHeight = 1.0
	step      = 1.7 // vertical distance between box tops
)

var (
	boxFill   = color.RGBA{R: 0xe8, G: 0xf0, B: 0xfa, A: 0xff}
	inputFill = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff}
	edge      = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

type node struct {
	title string
	shape string
	fill  color.Color
}

func nodes(m Model) []node {
	out := []node{{
		title: "input_1: InputLayer",
		shape: fmt.Sprintf("output: %s", m.InputShape()),
		fill:  inputFill,
	}}
	for _, l := range m.Summary() {
		title := fmt.Sprintf("%s: %s", l.Name, l.Kind)
		if l.Config != "" {
			title += "  (" + l.Config + ")"
		}
		out = append(out, node{
			title: title,
			shape: fmt.Sprintf("input: %s   output: %s   params: %d", l.Input, l.Output, l.Params),
			fill:  boxFill,
		})
	}
	return out
}

// Render writes m's layer graph to path. The image format follows the
// extension.
func (r *Renderer) Render(path string, m Model) error {
	ns := nodes(m)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%d params)", m.Name(), m.CountParams())
	p.HideAxes()

	bottom := -float64(len(ns)-1)*step - boxHeight
	p.X.Min, p.X.Max = -0.5, boxWidth+0.5
	p.Y.Min, p.Y.Max = bottom-0.3, 0.3

	labels := plotter.XYLabels{}
	for i, n := range ns {
		top := -float64(i) * step
		box, err := plotter.NewPolygon(plotter.XYs{
			{X: 0, Y: top},
			{X: boxWidth, Y: top},
			{X: boxWidth, Y: top - boxHeight},
			{X: 0, Y: top - boxHeight},
		})
		if err != nil {
			return fmt.Errorf("box %s: %w", n.title, err)
		}
		box.Color = n.fill
		box.LineStyle.Color = edge
		box.LineStyle.Width = vg.Points(0.8)
		p.Add(box)

		labels.XYs = append(labels.XYs,
			plotter.XY{X: 0.2, Y: top - 0.4},
			plotter.XY{X: 0.2, Y: top - 0.85},
		)
		labels.Labels = append(labels.Labels, n.title, n.shape)

		if i == len(ns)-1 {
			continue
		}
		if err := addArrow(p, top-boxHeight, top-step); err != nil {
			return err
		}
	}

	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].Font.Size = vg.Points(7)
	}
	p.Add(lbl)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	height := vg.Length(float64(len(ns))*0.9+0.8) * vg.Inch
	if err := p.Save(r.width, height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// addArrow draws a downward arrow between from and to at the box centre.
func addArrow(p *plot.Plot, from, to float64) error {
	mid := boxWidth / 2
	shaft, err := plotter.NewLine(plotter.XYs{{X: mid, Y: from}, {X: mid, Y: to + 0.15}})
	if err != nil {
		return fmt.Errorf("arrow: %w", err)
	}
	shaft.LineStyle.Color = edge
	shaft.LineStyle.Width = vg.Points(1)

	head, err := plotter.NewPolygon(plotter.XYs{
		{X: mid - 0.15, Y: to + 0.15},
		{X: mid + 0.15, Y: to + 0.15},
		{X: mid, Y: to},
	})
	if err != nil {
		return fmt.Errorf("arrow head: %w", err)
	}
	head.Color = edge
	head.LineStyle.Color = edge
	p.Add(shaft, head)
	return nil
}
