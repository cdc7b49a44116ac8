package mathutil

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// CubicSpline2d is a bicubic interpolant on a rectangular grid. Nodal
// derivatives along each axis and the cross derivative are fitted with
// natural cubic splines, then each cell is evaluated as a tensor-product
// Hermite cubic. Evaluation clamps the coordinates to the grid extents, so
// the interpolant never extrapolates.
type CubicSpline2d struct {
	x, y           []float64
	z, zx, zy, zxy *mat.Dense
}

func NewCubicSpline2d(x, y []float64, z *mat.Dense) (*CubicSpline2d, error) {
	nx, ny := z.Dims()
	if len(x) != nx || len(y) != ny {
		return nil, fmt.Errorf("NewCubicSpline2d: grid %dx%d does not match table %dx%d",
			len(x), len(y), nx, ny)
	}
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("NewCubicSpline2d: need at least a 2x2 grid, got %dx%d", nx, ny)
	}
	s := &CubicSpline2d{
		x: x, y: y, z: z,
		zx:  mat.NewDense(nx, ny, nil),
		zy:  mat.NewDense(nx, ny, nil),
		zxy: mat.NewDense(nx, ny, nil),
	}
	// d/dx along each column
	col := make([]float64, nx)
	for j := 0; j < ny; j++ {
		mat.Col(col, j, z)
		cs, err := NewCubicSpline(x, append([]float64(nil), col...))
		if err != nil {
			return nil, err
		}
		for i := 0; i < nx; i++ {
			s.zx.Set(i, j, cs.Deriv(x[i]))
		}
	}
	// d/dy along each row
	for i := 0; i < nx; i++ {
		cs, err := NewCubicSpline(y, append([]float64(nil), z.RawRowView(i)...))
		if err != nil {
			return nil, err
		}
		for j := 0; j < ny; j++ {
			s.zy.Set(i, j, cs.Deriv(y[j]))
		}
	}
	// cross derivative: d/dx of the fitted d/dy values
	for j := 0; j < ny; j++ {
		mat.Col(col, j, s.zy)
		cs, err := NewCubicSpline(x, append([]float64(nil), col...))
		if err != nil {
			return nil, err
		}
		for i := 0; i < nx; i++ {
			s.zxy.Set(i, j, cs.Deriv(x[i]))
		}
	}
	return s, nil
}

func (s *CubicSpline2d) XMin() float64 { return s.x[0] }
func (s *CubicSpline2d) XMax() float64 { return s.x[len(s.x)-1] }
func (s *CubicSpline2d) YMin() float64 { return s.y[0] }
func (s *CubicSpline2d) YMax() float64 { return s.y[len(s.y)-1] }

// hermite01 evaluates the four cubic Hermite basis functions at t.
func hermite01(t float64) (h00, h10, h01, h11 float64) {
	t2 := t * t
	t3 := t2 * t
	h00 = 2*t3 - 3*t2 + 1
	h10 = t3 - 2*t2 + t
	h01 = -2*t3 + 3*t2
	h11 = t3 - t2
	return
}

// Value evaluates the interpolant at (qx, qy), clamped to the grid domain.
func (s *CubicSpline2d) Value(qx, qy float64) float64 {
	qx = Clamp(qx, s.XMin(), s.XMax())
	qy = Clamp(qy, s.YMin(), s.YMax())
	i := segmentIndex(s.x, qx)
	j := segmentIndex(s.y, qy)
	hx := s.x[i+1] - s.x[i]
	hy := s.y[j+1] - s.y[j]
	u := (qx - s.x[i]) / hx
	v := (qy - s.y[j]) / hy
	a00, a10, a01, a11 := hermite01(u)
	b00, b10, b01, b11 := hermite01(v)

	var sum float64
	for ci := 0; ci < 2; ci++ {
		for cj := 0; cj < 2; cj++ {
			var au, adu, bu, bdu float64
			if ci == 0 {
				au, adu = a00, a10
			} else {
				au, adu = a01, a11
			}
			if cj == 0 {
				bu, bdu = b00, b10
			} else {
				bu, bdu = b01, b11
			}
			ii, jj := i+ci, j+cj
			sum += au*bu*s.z.At(ii, jj) +
				adu*hx*bu*s.zx.At(ii, jj) +
				au*bdu*hy*s.zy.At(ii, jj) +
				adu*hx*bdu*hy*s.zxy.At(ii, jj)
		}
	}
	return sum
}
