package driver

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// unifiedDiff renders a standard "--- / +++ / @@" unified diff between
// before and after, labeled with path, the way original_source's
// diffy::create_patch embeds a patch in each report entry.
func unifiedDiff(path, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	diff := gotextdiff.ToUnified(path, path, before, edits)
	return fmt.Sprint(diff)
}
