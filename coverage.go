package daub

import (
	"image"

	"github.com/disintegration/imaging"
)

// Coverage estimates which fraction of the silhouette is covered by paint.
// Both the snapshot and the mask are downsampled to a grid×grid raster by
// sampling the cell centers; a cell counts as painted when it lies inside
// the silhouette and the snapshot alpha is non-zero there.
// The result is 0 when no cell of the grid lies inside the silhouette.
func Coverage(snapshot image.Image, mask *Mask, grid int) float64 {
	return maskCells(mask, grid).coverage(snapshot)
}

// cellGrid is the downsampled silhouette: one flag per grid cell.
type cellGrid struct {
	size  int
	cells []bool
	total int
}

// maskCells downsamples the silhouette to the coverage grid.
func maskCells(mask *Mask, grid int) *cellGrid {
	g := &cellGrid{
		size:  grid,
		cells: make([]bool, grid*grid),
	}
	small := imaging.Resize(mask.Alpha(), grid, grid, imaging.NearestNeighbor)
	for i := range g.cells {
		if small.Pix[i*4+3] > 0 {
			g.cells[i] = true
			g.total++
		}
	}
	return g
}

func (g *cellGrid) coverage(snapshot image.Image) float64 {
	if g.total == 0 {
		return 0
	}
	small := imaging.Resize(snapshot, g.size, g.size, imaging.NearestNeighbor)

	var matched int
	for i, inside := range g.cells {
		if inside && small.Pix[i*4+3] > 0 {
			matched++
		}
	}
	return float64(matched) / float64(g.total)
}
