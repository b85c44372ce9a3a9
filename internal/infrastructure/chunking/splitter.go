package chunking

import "strings"

const DefaultWindowWords = 500

// WordSplitter cuts text into windows of whole words. With zero overlap the windows
// are disjoint and the last one may be shorter.
type WordSplitter struct {
	WindowWords  int
	OverlapWords int
}

func NewWordSplitter(windowWords, overlapWords int) *WordSplitter {
	if windowWords <= 0 {
		windowWords = DefaultWindowWords
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if overlapWords >= windowWords {
		overlapWords = windowWords / 4
	}
	return &WordSplitter{
		WindowWords:  windowWords,
		OverlapWords: overlapWords,
	}
}

func (s *WordSplitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := s.WindowWords - s.OverlapWords
	if step <= 0 {
		step = s.WindowWords
	}

	out := make([]string, 0, len(words)/step+1)
	for start := 0; start < len(words); start += step {
		end := start + s.WindowWords
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}
