package kernel

import "math"

// Mesh is a triangle soup: three floats per vertex in
// Vertices and Normals, three indices per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
}

func (m *Mesh) VertexCount() int   { return len(m.Vertices) / 3 }
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }
func (m *Mesh) IsEmpty() bool      { return len(m.Vertices) == 0 }

// AddTriangle appends a triangle with its own three vertices, all carrying
// the face normal n.
func (m *Mesh) AddTriangle(a, b, c, n [3]float64) {
	base := uint32(m.VertexCount())
	for _, v := range [3][3]float64{a, b, c} {
		m.Vertices = append(m.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Bounds returns the axis-aligned box of the vertices. An empty mesh
// reports +Inf/-Inf.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	inf := float32(math.Inf(1))
	lo = [3]float32{inf, inf, inf}
	hi = [3]float32{-inf, -inf, -inf}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], m.Vertices[i+a])
			hi[a] = max(hi[a], m.Vertices[i+a])
		}
	}
	return lo, hi
}
