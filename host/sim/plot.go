package sim

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"strider/leg/trajectory"
)

// Plot draws one cycle of path against the reconstructed foot positions and
// saves the image to file. The format follows the file extension.
func Plot(path trajectory.Path, actual []Point, file string) error {
	p := plot.New()
	p.Title.Text = "Foot path"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	period := path.Period()
	if period == 0 {
		period = 1
	}
	target := make(plotter.XYs, period+1)
	for i := uint32(0); i <= period; i++ {
		pt := path.Point(i % period)
		target[i].X = float64(pt.X)
		target[i].Y = float64(pt.Y)
	}
	line, err := plotter.NewLine(target)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{B: 200, A: 255}
	p.Add(line)
	p.Legend.Add("target", line)

	if len(actual) > 0 {
		pts := make(plotter.XYs, len(actual))
		for i, c := range actual {
			pts[i].X = float64(c.Foot.X)
			pts[i].Y = float64(c.Foot.Y)
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.Color = color.RGBA{R: 200, A: 255}
		scatter.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add("actual", scatter)
	}

	return p.Save(6*vg.Inch, 6*vg.Inch, file)
}
