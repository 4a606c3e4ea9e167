package config

import "testing"

// FuzzParse feeds arbitrary bytes to the job parser. Parsing must never
// panic and must return either a job or an error.
func FuzzParse(f *testing.F) {
	f.Add([]byte(sampleJob))
	f.Add([]byte(""))
	f.Add([]byte("format: image/png"))
	f.Add([]byte("instructions:\n  - src: ${X:-https://a/b.svg}\n"))
	f.Add([]byte("instructions: [{src: 1, colors: [{from: 2, to: 3}]}]"))
	f.Add([]byte("quality: .nan"))
	f.Add([]byte("\t:\n- -"))

	f.Fuzz(func(t *testing.T, data []byte) {
		job, err := Parse(data)
		if err == nil && job == nil {
			t.Error("Parse returned nil job with nil error")
		}
	})
}

// FuzzExpandEnv checks that text without references passes through.
func FuzzExpandEnv(f *testing.F) {
	f.Add("plain")
	f.Add("https://example.com/a.svg")
	f.Add("${A:-b}")

	f.Fuzz(func(t *testing.T, s string) {
		got := ExpandWith(s, func(string) string { return "" })
		if !envVarPattern.MatchString(s) && got != s {
			t.Errorf("ExpandWith(%q) = %q without any references", s, got)
		}
	})
}
