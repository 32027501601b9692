// Package blob finds colored blobs in planar I420 frames.
//
// A frame is scanned one row at a time. For every even row the shared chroma samples are
// thresholded into chroma runs; every luma row is then rescanned inside those runs to produce
// luma runs. Luma runs of consecutive rows that share at least one column are joined in a
// disjoint-set forest whose roots carry the bounding box, centroid sums and pixel count of the
// blob they represent. No label image is ever built, and memory is fixed when the Detector is
// created: blobs that do not fit are folded into a reserved sentinel entry and are never
// reported.
//
// After a frame has been scanned the roots can be ranked by pixel count and the largest
// bounding boxes copied out:
//
//	det, err := blob.NewDetector(blob.DefaultMaxRuns, blob.DefaultMaxBlobs)
//	...
//	if err := det.Detect(frame, thresholds); err != nil {
//		return err
//	}
//	coords := make([]uint16, 4*maxBoxes)
//	n := det.Forest().CopyBestBoundingBoxes(minPixels, coords)
package blob
