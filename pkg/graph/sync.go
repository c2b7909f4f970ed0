package graph

import (
	"context"
	"fmt"

	"github.com/DrSkyle/texgraph/pkg/gpu"
)

// uploadArray pushes the pending patch of arr into buf and returns the number of texels written.
// The buffer is reallocated first when the live records no longer fit.
func uploadArray(ctx context.Context, buf gpu.Buffer, arr *RecordArray) (int, error) {
	patch := arr.TakePatch()
	count := arr.Count()

	if count > buf.Size() {
		buf.ResizeErase(arr.Cap())
		if count == 0 {
			return 0, nil
		}
		if err := buf.Write(ctx, arr.Texels(0, count), 0); err != nil {
			arr.restorePatch(Patch{Lo: 0, Hi: count, Resized: true})
			return 0, err
		}
		return count, nil
	}
	if patch.Empty() {
		return 0, nil
	}

	lo, hi := patch.Lo, min(patch.Hi, count)
	if lo >= hi {
		return 0, nil
	}
	if err := buf.Write(ctx, arr.Texels(lo, hi), lo); err != nil {
		arr.restorePatch(patch)
		return 0, err
	}
	return hi - lo, nil
}

// downloadArray replaces arr with the buffer's view of it. Arrays holding edits the buffer has
// not seen yet, or whose records do not fit the buffer, stay authoritative on the host.
func downloadArray(ctx context.Context, buf gpu.Buffer, arr *RecordArray) (int, error) {
	count := arr.Count()
	if count == 0 || !arr.Patch().Empty() || buf.Size() < count {
		return 0, nil
	}
	data, err := buf.Read(ctx, 0, count)
	if err != nil {
		return 0, err
	}
	if len(data) != count*gpu.TexelFloats {
		return 0, fmt.Errorf("short read: %d floats for %d records", len(data), count)
	}
	arr.LoadTexels(data)
	return count, nil
}
