package sttmgen

import (
	"io"

	"github.com/mndrix/tap-go"
)

// TAPFormatter reports one TAP test per generation unit: ok when the unit
// validated clean, not ok when it carries error findings. Workbook-level
// findings are attached to a trailing pseudo-unit so CI sees them too.
type TAPFormatter struct{}

func (TAPFormatter) Write(rep *Report, w io.Writer) error {
	t := tap.New()
	t.Writer = w
	t.Header(0)

	for _, unit := range rep.Units {
		for _, msg := range rep.unitMessages(unit) {
			t.Diagnostic(msg)
		}
		t.Ok(!rep.unitHasErrors(unit), unit)
	}

	var global []string
	hasGlobalError := false
	for _, f := range rep.Findings() {
		if f.Table != "" {
			continue
		}
		global = append(global, string(f.Level)+": "+f.Message)
		if f.Level == LevelError {
			hasGlobalError = true
		}
	}
	if len(global) > 0 {
		for _, msg := range global {
			t.Diagnostic(msg)
		}
		t.Ok(!hasGlobalError, "workbook")
	}

	t.AutoPlan()
	return nil
}

func init() {
	RegisterFindingsFormatter("tap", TAPFormatter{})
}
