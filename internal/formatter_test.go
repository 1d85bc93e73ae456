package internal

import "testing"

func TestFormatResponseText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"bold and escaped newlines", `**Hi** there\n\nHow are you?`, "Hi there\n\nHow are you?"},
		{"italic", "an *important* point", "an important point"},
		{"escaped quotes", `she said \"hi\"`, `she said "hi"`},
		{"escaped tab", `a\tb`, "a\tb"},
		{"escaped backslash", `end\\`, `end\`},
		{"dash bullets", "- one\n- two", "• one\n• two"},
		{"plus and star bullets", "+ one\n  * two", "• one\n• two"},
		{"numbered list spacing", "  1.   first\n2.\tsecond", "1. first\n2. second"},
		{"collapse blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"collapse blank lines with spaces", "a\n  \n \n\nb", "a\n\nb"},
		{"trim", "  \n hello \n ", "hello"},
		{"escaped bullets", `Items:\n- a\n- b`, "Items:\n• a\n• b"},
		{"hyphen inside line kept", "well-known", "well-known"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResponseText(tt.in); got != tt.want {
				t.Errorf("FormatResponseText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatResponseText_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		`**Hi** there\n\nHow are you?`,
		`\\"nested\\"`,
		`\\\\n`,
		"***triple***",
		"* * *",
		"- \n- ",
		"a\n\n\n\n\n\nb",
		`\n\n\n- x`,
		"1.\t\tstep",
		"**unclosed",
		`\`,
		"  • already bulleted  ",
	}

	for _, in := range inputs {
		once := FormatResponseText(in)
		twice := FormatResponseText(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func FuzzFormatResponseText(f *testing.F) {
	seeds := []string{
		"",
		`**Hi** there\n\nHow are you?`,
		`\\\\n`,
		"***triple***",
		"- \n- ",
		"1.\t\tstep",
		"-\t*\t+ x",
		"a\n \t\n\t\n\nb",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, in string) {
		once := FormatResponseText(in)
		if twice := FormatResponseText(once); twice != once {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	})
}
