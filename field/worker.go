package field

// rowSpan represents an inclusive row range assigned to one worker.
type rowSpan struct{ start, end int }

// workerMask collects the row spans a worker goroutine advances each step.
type workerMask struct {
	rows []rowSpan
}

// assignRowMasks splits res rows into contiguous bands, distributing the
// bands across workers in round robin fashion.
func assignRowMasks(workerCount, res, band int) []workerMask {
	if workerCount < 1 {
		workerCount = 1
	}
	if band < 1 {
		band = 1
	}
	masks := make([]workerMask, workerCount)
	idx := 0
	for y := 0; y < res; y += band {
		end := y + band - 1
		if end > res-1 {
			end = res - 1
		}
		masks[idx%workerCount].rows = append(masks[idx%workerCount].rows, rowSpan{start: y, end: end})
		idx++
	}
	return masks
}

// processMask advances every row of mask into the scratch buffer. Interior
// cells read their neighbors directly; edge cells clamp.
func processMask(f *Field, mask *workerMask, viscosity float32, stamp *impulseStamp, hasImpulse bool) {
	res := f.res
	last := res - 1
	curr, prev, next := f.curr, f.prev, f.next
	for _, span := range mask.rows {
		for y := span.start; y <= span.end; y++ {
			rowBase := y * res
			northBase := clampCoord(y+1, 0, last) * res
			southBase := clampCoord(y-1, 0, last) * res
			north := curr[northBase : northBase+res]
			south := curr[southBase : southBase+res]
			center := curr[rowBase : rowBase+res]
			prevRow := prev[rowBase : rowBase+res]
			nextRow := next[rowBase : rowBase+res]
			impulseRow := hasImpulse && y >= stamp.fp.y0 && y <= stamp.fp.y1

			for x := 0; x < res; x++ {
				west := center[clampCoord(x-1, 0, last)]
				east := center[clampCoord(x+1, 0, last)]
				h := ((north[x]+south[x]+east+west)*0.5 - prevRow[x]) * viscosity
				if impulseRow {
					h += stamp.term(x, y)
				}
				nextRow[x] = h
			}
		}
	}
}
