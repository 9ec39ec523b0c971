// Package graph defines the scene graph that grid builds start from.
// A scene graph is a DAG of solid primitives, transforms, booleans and
// groups; grid request nodes name a solid subtree to be meshed into an
// unstructured grid.
package graph
