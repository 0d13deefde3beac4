package sttmgen

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffResult compares freshly generated SQL against a previously written
// consolidated file.
type DiffResult struct {
	Path     string
	Same     bool
	Missing  bool // no previous file to compare against
	Diff     string
	Previous string
	Current  string
}

// DiffAgainstFile regenerates nothing itself: it takes the SQL of the
// current run and produces a unified diff against what is on disk, so a
// mapping change can be reviewed as a SQL change before anything is
// deployed.
func DiffAgainstFile(path, currentSQL string) (*DiffResult, error) {
	res := &DiffResult{Path: path, Current: currentSQL}

	prev, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			res.Missing = true
			return res, nil
		}
		return nil, fmt.Errorf("failed to read previous SQL '%s': %w", path, err)
	}
	res.Previous = string(prev)

	if res.Previous == currentSQL {
		res.Same = true
		return res, nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(res.Previous),
		B:        difflib.SplitLines(currentSQL),
		FromFile: "previous",
		ToFile:   "generated",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil, fmt.Errorf("failed to build diff: %w", err)
	}
	res.Diff = text
	return res, nil
}
