package plan

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "json fence",
			in:   "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "bare fence uppercase tag",
			in:   "```JSON\n{\"a\":1}```",
			want: `{"a":1}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the plan:\n{\"a\":{\"b\":2}}\nHope this helps!",
			want: `{"a":{"b":2}}`,
		},
		{
			name: "trailing commas",
			in:   `{"a":[1,2,],"b":3,}`,
			want: `{"a":[1,2],"b":3}`,
		},
		{
			name: "trailing comma with whitespace",
			in:   "{\"a\":[1,\n  ]\n,}",
			want: "{\"a\":[1]\n}",
		},
		{
			name: "single quotes only",
			in:   `{'a':'b'}`,
			want: `{"a":"b"}`,
		},
		{
			name: "single quotes left alone when double quotes exist",
			in:   `{"a":"it's"}`,
			want: `{"a":"it's"}`,
		},
		{
			name: "no braces",
			in:   "  nothing here  ",
			want: "nothing here",
		},
		{
			name: "closing brace before opening",
			in:   "} oops {",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"components\":[{\"id\":\"a\",}],}\n```",
		`{'a':'b'}`,
		`prefix {"x": [1, 2]} suffix`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
