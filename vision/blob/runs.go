package blob

// Run is the half-open column interval [Low, High) of one row.
type Run struct {
	Low  uint16
	High uint16
}

// Width returns the number of columns in the run.
func (r Run) Width() int {
	return int(r.High) - int(r.Low)
}

// Overlaps reports whether the two runs share at least one column.
func (r Run) Overlaps(o Run) bool {
	return r.Low < o.High && o.Low < r.High
}

// LumaRun is a run of qualifying pixels within a single luma row, tagged with the forest entry
// it has been assigned to. A Parent of 0 means the run is not part of any set yet.
type LumaRun struct {
	Run
	Parent Index
}

// maxChromaRuns bounds the chroma runs of a row of cols pixels. Runs are separated by at least
// one disqualified chroma sample.
func maxChromaRuns(cols int) int {
	return cols/4 + 1
}

// maxLumaRuns bounds the luma runs of a row of cols pixels. Runs are separated by at least one
// disqualified pixel.
func maxLumaRuns(cols int) int {
	return cols/2 + 1
}

// FindChromaRuns appends to dst[:0] the runs of columns of one row pair whose U and V samples
// both fall inside the threshold windows. uRow and vRow hold cols/2 samples; each sample covers
// two columns, so runs always start and end on even columns (or at cols).
func FindChromaRuns(uRow, vRow []byte, cols int, t Thresholds, dst []Run) []Run {
	dst = dst[:0]
	col := 0
	for col < cols {
		if !t.chromaIn(uRow[col/2], vRow[col/2]) {
			col += 2
			continue
		}
		low := col
		col += 2
		for col < cols && t.chromaIn(uRow[col/2], vRow[col/2]) {
			col += 2
		}
		high := col
		if high > cols {
			high = cols
		}
		dst = append(dst, Run{Low: uint16(low), High: uint16(high)})
	}
	return dst
}

// FindLumaRuns appends to dst[:0] the runs of pixels inside the given chroma runs whose luma is
// at least yLow. Every returned run is untagged.
func FindLumaRuns(yRow []byte, yLow uint8, chroma []Run, dst []LumaRun) []LumaRun {
	dst = dst[:0]
	for _, cr := range chroma {
		col, high := int(cr.Low), int(cr.High)
		for col < high {
			for col < high && yRow[col] < yLow {
				col++
			}
			if col >= high {
				break
			}
			low := col
			col++
			for col < high && yRow[col] >= yLow {
				col++
			}
			dst = append(dst, LumaRun{Run: Run{Low: uint16(low), High: uint16(col)}})
		}
	}
	return dst
}
