package preview

// SampleBuffer returns the demo buffer: a Go function mid-edit with the
// cursor at the end of the last line.
func SampleBuffer() []string {
	return []string{
		"package demo",
		"",
		"// Sum returns the total of xs.",
		"func Sum(xs ...int) int {",
		"\ttotal := 0",
		"\tfor _, x := range xs {",
	}
}

// SampleSuggestions returns the completions the r key cycles through:
// a plain block completion, one with an inline tail comment, and a
// longer variant.
func SampleSuggestions() [][]string {
	return [][]string{
		{
			"",
			"\t\ttotal += x",
			"\t}",
			"\treturn total",
			"}",
		},
		{
			" // walk the inputs",
			"\t\ttotal += x",
			"\t}",
			"\treturn total",
			"}",
		},
		{
			"",
			"\t\tif x > 0 {",
			"\t\t\ttotal += x",
			"\t\t}",
			"\t}",
			"\treturn total",
			"}",
		},
	}
}
