package app

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultChunkSize = 500

// PageChunk is one bounded span of extracted text with its source page.
type PageChunk struct {
	Text string
	Page int
}

// pageMarkerRe matches the page delimiter lines the ingestion pipeline
// inserts between extracted pages, e.g. "--- Page 3 ---".
var pageMarkerRe = regexp.MustCompile(`(?i)^-+\s*page\s+(\S+)\s*-+$`)

// Chunker splits page-marked text into bounded chunks, preserving page
// numbers. No overlap is applied.
type Chunker struct {
	chunkSize int
}

func NewChunker(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Chunker{chunkSize: chunkSize}
}

// Chunk scans the text line by line. A page marker flushes the buffer
// under the page it belongs to; a buffer growing past the size threshold
// flushes mid-page under the current page. The trailing buffer always
// flushes. Empty or whitespace-only input yields no chunks.
func (c *Chunker) Chunk(rawText string) []PageChunk {
	var chunks []PageChunk
	var buf strings.Builder
	page := 1

	flush := func(p int) {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		chunks = append(chunks, PageChunk{Text: text, Page: p})
	}

	for _, line := range strings.Split(rawText, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := pageMarkerRe.FindStringSubmatch(trimmed); m != nil {
			flush(page)
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
				page = n
			} else {
				// Unparseable marker: assume the next page rather than fail.
				page++
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)

		if buf.Len() > c.chunkSize {
			flush(page)
		}
	}
	flush(page)

	return chunks
}

// MarkPages joins per-page texts into the marker convention Chunk expects.
func MarkPages(pages []string) string {
	var b strings.Builder
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		b.WriteString("--- Page ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(" ---\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}
