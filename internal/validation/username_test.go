package validation

import "testing"

func TestValidUsername_Valid(t *testing.T) {
	valids := []string{
		"j",
		"jo",
		"john",
		"john.doe",
		"dev_42",
		"a-b.c",
		// 40 chars (start/end alnum)
		mkLen(38) + "ab",
	}
	for _, v := range valids {
		if !ValidUsername(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidUsername_Invalid(t *testing.T) {
	invalids := []string{
		"",          // empty
		".john",     // starts with non-alnum
		"john.",     // ends with non-alnum
		"jo hn",     // space
		"John",      // uppercase
		"a/b",       // slash
		"a:b",       // colon
		mkLen(41),   // > 40
		mkLen(39) + "ab", // 41
	}
	for _, v := range invalids {
		if ValidUsername(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

// mkLen builds a string of exactly n 'a' characters.
func mkLen(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = 'a'
	}
	return string(out)
}
