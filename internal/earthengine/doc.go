// Package earthengine models the hosted geospatial processing platform the analysis
// runs on.
//
// Nothing in this package computes pixels. Every method on Image, ImageCollection
// and FeatureCollection only grows a lazy expression graph (Node). The graph is
// evaluated remotely when a Backend is asked for a value (ComputeValue) or for
// pixels (ComputePixels); those are the only blocking points of a run.
//
// Encode turns a graph into the platform's wire format: a flat table of values
// where every function invocation is stored once and referenced by id. Identical
// sub-expressions therefore encode to identical tables, and Digest gives a stable
// key for caching computed values.
package earthengine
