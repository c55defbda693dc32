package insights

import (
	"reflect"
	"testing"
)

func TestSentenceSplitter(t *testing.T) {
	tests := []struct {
		name     string
		minChars int
		chunks   []string
		want     []string
		rest     string
	}{
		{
			name:     "short sentences are merged",
			minChars: 20,
			chunks:   []string{"Hi. ", "How are you? ", "I am fine, thanks!"},
			want:     []string{"Hi. How are you? I am fine, thanks!"},
		},
		{
			name:     "split across chunks",
			minChars: 10,
			chunks:   []string{"The president of", " India is Droupadi", " Murmu. She took", " office in 2022."},
			want:     []string{"The president of India is Droupadi Murmu.", "She took office in 2022."},
		},
		{
			name:     "newline and semicolon end sentences",
			minChars: 5,
			chunks:   []string{"first line\nsecond part; third"},
			want:     []string{"first line", "second part;"},
			rest:     "third",
		},
		{
			name:     "remainder is kept for flush",
			minChars: 20,
			chunks:   []string{"No ending here"},
			rest:     "No ending here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSentenceSplitter(tt.minChars)
			var got []string
			for _, c := range tt.chunks {
				got = append(got, s.Push(c)...)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if rest := s.Flush(); rest != tt.rest {
				t.Errorf("expected rest %q, got %q", tt.rest, rest)
			}
			if s.Flush() != "" {
				t.Error("flush should empty the buffer")
			}
		})
	}
}
