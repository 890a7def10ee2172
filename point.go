package pointmap

import (
	"cmp"
	"strconv"
)

// Point is the coordinate of a cell.
type Point struct {
	X int
	Y int
}

func P(x, y int) Point {
	return Point{x, y}
}

// Compare orders points by X, then by Y. This is also the order of columns
// and cell files in storage.
func Compare(a, b Point) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

func (p Point) Compare(q Point) int {
	return Compare(p, q)
}

func (p Point) Less(q Point) bool {
	return Compare(p, q) < 0
}

// Translate moves the point by the given delta. Map copies points on insert,
// so translating a point after using it as a key does not affect the map.
func (p *Point) Translate(dx, dy int) {
	p.X += dx
	p.Y += dy
}

func (p *Point) SetLocation(x, y int) {
	p.X, p.Y = x, y
}

func (p Point) String() string {
	buf := make([]byte, 0, 24)
	buf = append(buf, '(')
	buf = strconv.AppendInt(buf, int64(p.X), 10)
	buf = append(buf, ',', ' ')
	buf = strconv.AppendInt(buf, int64(p.Y), 10)
	buf = append(buf, ')')
	return string(buf)
}
