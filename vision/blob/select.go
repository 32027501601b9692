package blob

// shellSortGaps is Ciura's gap sequence, applied from the largest gap down.
var shellSortGaps = [...]int{1, 4, 10, 23, 57, 132, 301, 701}

// SortRootsByPixelCount orders the root registry by ascending pixel count. Shell sort keeps the
// worst case predictable and works in place on the registry.
func (f *Forest) SortRootsByPixelCount() {
	roots := f.roots
	for k := len(shellSortGaps) - 1; k >= 0; k-- {
		gap := shellSortGaps[k]
		for i := gap; i < len(roots); i++ {
			tmp := roots[i]
			count := f.entries[tmp].stats.Count
			j := i
			for ; j >= gap && f.entries[roots[j-gap]].stats.Count > count; j -= gap {
				roots[j] = roots[j-gap]
			}
			roots[j] = tmp
		}
	}
	for slot, idx := range roots {
		f.entries[idx].rootIndex = Index(slot)
	}
}

// Blob is one selected component.
type Blob struct {
	Index Index
	Stats Stats
}

// BestBlobs sorts the registry and returns up to max blobs with at least minPixels pixels,
// largest first. A max of zero or less means no limit.
func (f *Forest) BestBlobs(minPixels, max int) []Blob {
	f.SortRootsByPixelCount()
	var blobs []Blob
	for i := len(f.roots) - 1; i >= 0; i-- {
		if max > 0 && len(blobs) >= max {
			break
		}
		idx := f.roots[i]
		stats := f.entries[idx].stats
		if int64(stats.Count) < int64(minPixels) {
			// Sorted ascending, so everything left is smaller still.
			break
		}
		blobs = append(blobs, Blob{Index: idx, Stats: stats})
	}
	return blobs
}

// CopyBestBoundingBoxes sorts the registry and writes the boxes of the largest blobs with at
// least minPixels pixels into dst as min-x, min-y, max-x, max-y quadruples, largest first. It
// stops when len(dst)/4 boxes have been written and returns the number of coordinates written.
func (f *Forest) CopyBestBoundingBoxes(minPixels int, dst []uint16) int {
	maxBoxes := len(dst) / 4
	if maxBoxes == 0 {
		return 0
	}
	n := 0
	for _, b := range f.BestBlobs(minPixels, maxBoxes) {
		box := b.Stats.Box()
		dst[n] = box.MinX
		dst[n+1] = box.MinY
		dst[n+2] = box.MaxX
		dst[n+3] = box.MaxY
		n += 4
	}
	return n
}
