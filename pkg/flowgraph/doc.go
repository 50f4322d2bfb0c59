// Package flowgraph is the model and editing logic of the campaign flow
// builder: typed nodes and edges, the node catalog, a reducer over editing
// commands, the canvas interaction state machine, handle and connector
// geometry, and the per-type property fields.
//
// The host owns the Graph. Editors and reducers only ever return new graphs.
package flowgraph
