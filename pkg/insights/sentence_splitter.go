package insights

import "strings"

const sentenceEndings = ".!?;\n"

// SentenceSplitter collects streamed text and hands out pieces which are
// worth synthesizing on their own.
type SentenceSplitter struct {
	minChars int
	buf      strings.Builder
}

func NewSentenceSplitter(minChars int) *SentenceSplitter {
	return &SentenceSplitter{minChars: minChars}
}

// Push adds text and returns the sentences completed by it. A sentence is
// released at a sentence ending once at least minChars are buffered.
func (s *SentenceSplitter) Push(text string) []string {
	var out []string
	for _, r := range text {
		s.buf.WriteRune(r)
		if strings.ContainsRune(sentenceEndings, r) && s.buf.Len() >= s.minChars {
			if sentence := strings.TrimSpace(s.buf.String()); sentence != "" {
				out = append(out, sentence)
			}
			s.buf.Reset()
		}
	}
	return out
}

// Flush returns whatever is left in the buffer.
func (s *SentenceSplitter) Flush() string {
	rest := strings.TrimSpace(s.buf.String())
	s.buf.Reset()
	return rest
}
