package sttmgen

import "testing"

func TestSanitizePredicate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"WHERE STATUS = 'A'", "STATUS = 'A'"},
		{"and STATUS = 'A'", "STATUS = 'A'"},
		{"OR x = 1;", "x = 1"},
		{"STATUS = 'A';;", "STATUS = 'A'"},
		{"  STATUS = 'A'  ", "STATUS = 'A'"},
		{"", ""},
		// only a single leading keyword is stripped, and only at the start
		{"ANDROID = 1", "ANDROID = 1"},
		{"x = 1 AND y = 2", "x = 1 AND y = 2"},
	}
	for _, tt := range tests {
		if got := sanitizePredicate(tt.raw); got != tt.want {
			t.Errorf("sanitizePredicate(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSanitizePredicateIdempotent(t *testing.T) {
	inputs := []string{
		"WHERE STATUS = 'A'",
		"x = 1 AND y = 2;",
		"  BALANCE > 100  ",
		"",
	}
	for _, raw := range inputs {
		once := sanitizePredicate(raw)
		twice := sanitizePredicate(once)
		if once != twice {
			t.Errorf("sanitizePredicate not idempotent on %q: %q then %q", raw, once, twice)
		}
	}
}

func TestRewritePredicateBasic(t *testing.T) {
	reserved := reservedSet(nil)
	got := rewritePredicateAsJSON("STATUS = 'A'", "val", reserved)
	want := "JSON_VALUE(CAST(val AS STRING), '$.STATUS') = 'A'"
	if got != want {
		t.Errorf("rewrite = %q, want %q", got, want)
	}
}

func TestRewritePredicateLeavesQuotedLiterals(t *testing.T) {
	reserved := reservedSet(nil)
	tests := []struct {
		fp   string
		want string
	}{
		{
			"STATUS = 'ACTIVE_NOW'",
			"JSON_VALUE(CAST(val AS STRING), '$.STATUS') = 'ACTIVE_NOW'",
		},
		{
			`LABEL = "FLAGGED"`,
			`JSON_VALUE(CAST(val AS STRING), '$.LABEL') = "FLAGGED"`,
		},
		{
			// a quote span containing what looks like a field
			"'STATUS' = STATUS",
			"'STATUS' = JSON_VALUE(CAST(val AS STRING), '$.STATUS')",
		},
	}
	for _, tt := range tests {
		if got := rewritePredicateAsJSON(tt.fp, "val", reserved); got != tt.want {
			t.Errorf("rewrite(%q) = %q, want %q", tt.fp, got, tt.want)
		}
	}
}

func TestRewritePredicateSkipsReservedAndDigits(t *testing.T) {
	reserved := reservedSet(nil)
	got := rewritePredicateAsJSON("ACCT_ID IN (100, 200) AND NOT DELETED_FLAG IS NULL", "val", reserved)
	want := "JSON_VALUE(CAST(val AS STRING), '$.ACCT_ID') IN (100, 200) AND NOT JSON_VALUE(CAST(val AS STRING), '$.DELETED_FLAG') IS NULL"
	if got != want {
		t.Errorf("rewrite = %q, want %q", got, want)
	}
}

func TestRewritePredicateSkipsShortTokens(t *testing.T) {
	reserved := reservedSet(nil)
	// short uppercase tokens without underscores look like aliases
	got := rewritePredicateAsJSON("ABC = 1", "val", reserved)
	if got != "ABC = 1" {
		t.Errorf("short token rewritten: %q", got)
	}

	// but an underscore marks a payload field regardless of length
	got = rewritePredicateAsJSON("A_B = 1", "val", reserved)
	want := "JSON_VALUE(CAST(val AS STRING), '$.A_B') = 1"
	if got != want {
		t.Errorf("rewrite = %q, want %q", got, want)
	}
}

func TestRewritePredicateIdempotent(t *testing.T) {
	reserved := reservedSet(nil)
	once := rewritePredicateAsJSON("STATUS = 'A'", "val", reserved)
	twice := rewritePredicateAsJSON(once, "val", reserved)
	if once != twice {
		t.Errorf("rewrite not idempotent: %q then %q", once, twice)
	}
}

func TestRewritePredicateNoFieldTokensUnchanged(t *testing.T) {
	reserved := reservedSet(nil)
	inputs := []string{
		"a = 1",
		"lower_case = 'x'",
		"1 = 1",
		"",
	}
	for _, fp := range inputs {
		if got := rewritePredicateAsJSON(fp, "val", reserved); got != fp {
			t.Errorf("rewrite(%q) = %q, want unchanged", fp, got)
		}
	}
}

func TestRewritePredicateExtraReservedWords(t *testing.T) {
	reserved := reservedSet([]string{"CURRENT_DATE"})
	got := rewritePredicateAsJSON("POSTED_AT < CURRENT_DATE", "val", reserved)
	want := "JSON_VALUE(CAST(val AS STRING), '$.POSTED_AT') < CURRENT_DATE"
	if got != want {
		t.Errorf("rewrite = %q, want %q", got, want)
	}
}

func TestRewritePredicateTokenMustEndOnBoundary(t *testing.T) {
	reserved := reservedSet(nil)
	// trailing lowercase defeats the all-caps token shape
	got := rewritePredicateAsJSON("STATUSx = 1", "val", reserved)
	if got != "STATUSx = 1" {
		t.Errorf("mixed-case token rewritten: %q", got)
	}
}
