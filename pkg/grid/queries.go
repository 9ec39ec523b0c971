package grid

// FaceCountOfCell returns the number of faces of cell.
func (g *UnstructuredGrid) FaceCountOfCell(cell uint64) (uint64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.FaceCountOfCell(cell)
}

// GlobalFaceIndex returns the grid-wide index of the localFace-th face of cell.
func (g *UnstructuredGrid) GlobalFaceIndex(cell, localFace uint64) (uint64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.GlobalFaceIndex(cell, localFace)
}

// NodeCountOfFace returns the number of nodes of the localFace-th face of cell.
func (g *UnstructuredGrid) NodeCountOfFace(cell, localFace uint64) (uint64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.NodeCountOfFace(cell, localFace)
}

// NodeIndicesOfFace returns the ordered node indices of the localFace-th
// face of cell.
func (g *UnstructuredGrid) NodeIndicesOfFace(cell, localFace uint64) (IndexView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.NodeIndicesOfFace(cell, localFace)
}

// CumulativeFaceCountPerCell returns a view of the loaded cumulative face
// counts. It fails with ErrLogic for constant-shape grids.
func (g *UnstructuredGrid) CumulativeFaceCountPerCell() (IndexView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.CumulativeFaceCounts()
}

// CumulativeNodeCountPerFace returns a view of the loaded cumulative node
// counts. It fails with ErrLogic for constant node counts.
func (g *UnstructuredGrid) CumulativeNodeCountPerFace() (IndexView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.CumulativeNodeCounts()
}

// FaceCountPerCell fills out with the face count of every cell.
func (g *UnstructuredGrid) FaceCountPerCell(out []uint64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.PerElementFaceCounts(out)
}

// NodeCountPerFace fills out with the node count of every face.
func (g *UnstructuredGrid) NodeCountPerFace(out []uint64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.adj.PerElementNodeCounts(out)
}

// IsFaceCountOfCellsConstant reports whether every cell has the same number
// of faces.
func (g *UnstructuredGrid) IsFaceCountOfCellsConstant() (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return false, errNoGeometry
	}
	return g.desc.facesPerCell != 0, nil
}

// ConstantFaceCountOfCells returns the face count shared by all cells.
func (g *UnstructuredGrid) ConstantFaceCountOfCells() (uint64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return 0, errNoGeometry
	}
	if g.desc.facesPerCell == 0 {
		return 0, errVariableFaces
	}
	return g.desc.facesPerCell, nil
}

// IsNodeCountOfFacesConstant reports whether every face has the same number
// of nodes.
func (g *UnstructuredGrid) IsNodeCountOfFacesConstant() (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return false, errNoGeometry
	}
	return g.desc.nodesPerFace != 0, nil
}

// ConstantNodeCountOfFaces returns the node count shared by all faces.
func (g *UnstructuredGrid) ConstantNodeCountOfFaces() (uint64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.desc == nil {
		return 0, errNoGeometry
	}
	if g.desc.nodesPerFace == 0 {
		return 0, errVariableNodes
	}
	return g.desc.nodesPerFace, nil
}
