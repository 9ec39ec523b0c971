package engine

import "testing"

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(cylinder :height 3)`,
			expect: `(cylinder "__kw_height" 3)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 3 :radius 1)`,
			expect: `(cylinder "__kw_height" 3 "__kw_radius" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def inner-ball ref)`,
			expect: `(def inner_ball ref)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 0)`,
			expect: `(vec3 -1 0 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "escaped quote inside string",
			input:  `"say \":hi\"" :at`,
			expect: `"say \":hi\"" "__kw_at"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw; not-a-comment`",
			expect: "`raw :kw; not-a-comment`",
		},
		{
			name:   "unterminated string runs to end",
			input:  `(defgrid "slab :cell-size`,
			expect: `(defgrid "slab :cell-size`,
		},
		{
			name:   "comment ends at newline",
			input:  "; note\n(box 1 2 3)",
			expect: "// note\n(box 1 2 3)",
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:cell-size`,
			expect: `"__kw_cell-size"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
